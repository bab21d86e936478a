package tastefeed

// Item is a catalog or reference entry for the low-level API.
// Exactly one embedding source must be set: Vector or Content.
type Item struct {
	ID       string
	Category string
	Tags     map[string]string
	Numerics map[string]float64
	Labels   []string
	Vector   []float32
	Content  string
}

// Query describes one search request.
type Query struct {
	// UserID selects the taste profile to blend in. Empty searches anonymously.
	UserID string
	// Text is the free-text query. Empty relies on the profile alone.
	Text string

	Category    string
	Subcategory string
	Labels      []string
	MinPrice    *float64
	MaxPrice    *float64

	// Alpha overrides the taste/text blend weight, in [0, 1]. Nil uses the
	// client default.
	Alpha *float64
	Limit int
}

// Result is a single search hit.
type Result struct {
	ID       string
	Tags     map[string]string
	Numerics map[string]float64

	// Similarity is nil for browse hits, which carry no vector score.
	Similarity *float64
	// Secondary and Merged are set only when a reranking pass ran.
	Secondary *float64
	Merged    *float64

	// Source is "knn" or "browse".
	Source string
}

// TasteProfile is a user's preference vector with its CAS version.
type TasteProfile struct {
	UserID  string
	Version int
	Vector  []float32
}

// HealthReport aggregates component health checks.
type HealthReport struct {
	// Status is "ok" or "degraded".
	Status string
	// Checks maps component name to "ok" or an error message.
	Checks map[string]string
}
