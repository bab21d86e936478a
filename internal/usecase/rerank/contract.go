package rerank

import (
	"context"

	"github.com/kailas-cloud/tastefeed/internal/domain/search/result"
)

// Scorer assigns a secondary relevance score in [0,1] to each candidate,
// in input order.
type Scorer interface {
	Score(ctx context.Context, query string, items []result.Result) ([]float64, error)
}
