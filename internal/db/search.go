package db

import "github.com/kailas-cloud/tastefeed/internal/domain/search/filter"

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName    string
	Filter       filter.Filter
	Vector       []float32
	K            int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search. For KNN queries Score
// carries the cosine similarity (1 minus the reported distance).
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
