package search

import (
	"context"

	"github.com/kailas-cloud/tastefeed/internal/domain"
	"github.com/kailas-cloud/tastefeed/internal/domain/profile"
	"github.com/kailas-cloud/tastefeed/internal/domain/search/filter"
	"github.com/kailas-cloud/tastefeed/internal/domain/search/result"
	"github.com/kailas-cloud/tastefeed/internal/domain/vector"
	"github.com/kailas-cloud/tastefeed/internal/usecase/enhance"
	"github.com/kailas-cloud/tastefeed/internal/usecase/resultcache"
)

// Retriever runs candidate retrieval against the vector index.
type Retriever interface {
	SearchKNN(ctx context.Context, vec vector.Vector, f filter.Filter, k int) ([]result.Result, error)
	Browse(ctx context.Context, f filter.Filter, limit int) ([]result.Result, error)
}

// ProfileReader reads taste profiles for query composition.
type ProfileReader interface {
	Get(ctx context.Context, userID string) (profile.Profile, error)
}

// Embedder vectorizes query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Reranker reorders scored candidates; it degrades internally and never
// returns an error.
type Reranker interface {
	Rerank(ctx context.Context, query string, results []result.Result) []result.Result
}

// ResultCache wraps the expensive part of a search in a read-through cache.
type ResultCache interface {
	GetOrCompute(
		ctx context.Context, in resultcache.Inputs,
		compute func(ctx context.Context) ([]result.Result, error),
	) ([]result.Result, error)
}

// Enhancer optionally rewrites query text before embedding.
type Enhancer interface {
	Enhance(ctx context.Context, query string) enhance.Enhanced
}
