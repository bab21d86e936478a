// Package rerank blends a secondary LLM relevance score into similarity
// ranking. The scorer sits behind a circuit breaker and a hard timeout;
// every failure path degrades to the similarity-only ordering instead of
// failing the search.
package rerank

import (
	"context"
	"fmt"
	"sort"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/tastefeed/internal/domain/search/result"
	"github.com/kailas-cloud/tastefeed/internal/metrics"
)

// Options configures the reranking stage.
type Options struct {
	// Weight of the secondary score in the merged ranking, in [0,1].
	Weight float64
	// Timeout for one scorer call.
	Timeout time.Duration
	// BreakerFailures is the consecutive failure count that opens the breaker.
	BreakerFailures int
	// BreakerCooldown is how long the breaker stays open before probing again.
	BreakerCooldown time.Duration
}

// Service reranks scored candidates.
type Service struct {
	scorer  Scorer
	breaker *gobreaker.CircuitBreaker[[]float64]
	weight  float64
	timeout time.Duration
	logger  *zap.Logger
}

// New creates a rerank service. scorer may be nil, in which case Rerank is
// a pass-through.
func New(scorer Scorer, opts Options, logger *zap.Logger) *Service {
	failures := opts.BreakerFailures
	if failures <= 0 {
		failures = 5
	}
	cooldown := opts.BreakerCooldown
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker[[]float64](gobreaker.Settings{
		Name:    "rerank-scorer",
		Timeout: cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(failures)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Service{
		scorer:  scorer,
		breaker: breaker,
		weight:  opts.Weight,
		timeout: opts.Timeout,
		logger:  logger,
	}
}

// Rerank merges a secondary score into each candidate's ranking and re-sorts
// by the merged score. On scorer failure, breaker rejection, or timeout the
// input ordering is returned unchanged.
func (s *Service) Rerank(ctx context.Context, query string, results []result.Result) []result.Result {
	if s.scorer == nil || len(results) == 0 {
		metrics.RerankTotal.WithLabelValues("skipped").Inc()
		return results
	}

	scores, err := s.breaker.Execute(func() ([]float64, error) {
		scoreCtx := ctx
		if s.timeout > 0 {
			var cancel context.CancelFunc
			scoreCtx, cancel = context.WithTimeout(ctx, s.timeout)
			defer cancel()
		}
		return s.scorer.Score(scoreCtx, query, results)
	})
	if err != nil {
		s.logger.Warn("rerank degraded to similarity ordering",
			zap.Int("candidates", len(results)),
			zap.Error(err),
		)
		metrics.RerankTotal.WithLabelValues("degraded").Inc()
		return results
	}
	if len(scores) != len(results) {
		s.logger.Warn("rerank degraded to similarity ordering",
			zap.Int("candidates", len(results)),
			zap.Error(fmt.Errorf("scorer returned %d scores for %d candidates", len(scores), len(results))),
		)
		metrics.RerankTotal.WithLabelValues("degraded").Inc()
		return results
	}

	merged := make([]result.Result, len(results))
	for i, r := range results {
		secondary := clamp01(scores[i])
		merged[i] = r.WithRerank(secondary, s.mergedScore(r.Similarity(), secondary))
	}
	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Merged() != merged[j].Merged() {
			return merged[i].Merged() > merged[j].Merged()
		}
		return merged[i].ID() < merged[j].ID()
	})

	metrics.RerankTotal.WithLabelValues("ok").Inc()
	return merged
}

// mergedScore maps cosine similarity from [-1,1] onto [0,1] before blending
// so both components share a scale.
func (s *Service) mergedScore(similarity, secondary float64) float64 {
	return (1-s.weight)*((similarity+1)/2) + s.weight*secondary
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
