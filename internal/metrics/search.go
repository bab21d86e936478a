package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search pipeline Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tastefeed",
			Name:      "search_requests_total",
			Help:      "Total number of search requests by mode",
		},
		[]string{"mode"}, // "hybrid" / "profile" / "text" / "browse"
	)

	SearchCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tastefeed",
			Name:      "search_cache_total",
			Help:      "Result cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	RerankTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tastefeed",
			Name:      "rerank_total",
			Help:      "Rerank outcomes",
		},
		[]string{"result"}, // "ok" / "degraded" / "skipped"
	)

	ProfileUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tastefeed",
			Name:      "profile_updates_total",
			Help:      "Taste profile update outcomes",
		},
		[]string{"result"}, // "ok" / "conflict"
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchCacheTotal)
	prometheus.MustRegister(RerankTotal)
	prometheus.MustRegister(ProfileUpdatesTotal)
	searchMetricsRegistered = true
}
