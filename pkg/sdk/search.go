package tastefeed

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/tastefeed/internal/domain/search/filter"
	"github.com/kailas-cloud/tastefeed/internal/domain/search/result"
	searchuc "github.com/kailas-cloud/tastefeed/internal/usecase/search"
)

// Search runs the blended retrieval pipeline and returns ranked results.
func (c *Client) Search(ctx context.Context, q Query) ([]Result, error) {
	req, err := toInternalRequest(q)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	results, err := c.searchSvc.Search(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	out := make([]Result, len(results))
	for i := range results {
		out[i] = fromInternalResult(&results[i])
	}
	return out, nil
}

func toInternalRequest(q Query) (searchuc.Request, error) {
	var ranges map[string]filter.Range
	if q.MinPrice != nil || q.MaxPrice != nil {
		r, err := filter.NewRange(q.MinPrice, q.MaxPrice)
		if err != nil {
			return searchuc.Request{}, err
		}
		ranges = map[string]filter.Range{filter.FieldPrice: r}
	}

	f, err := filter.New(q.Category, q.Subcategory, q.Labels, ranges)
	if err != nil {
		return searchuc.Request{}, err
	}

	return searchuc.Request{
		UserID: q.UserID,
		Query:  q.Text,
		Filter: f,
		Alpha:  q.Alpha,
		Limit:  q.Limit,
	}, nil
}

func fromInternalResult(r *result.Result) Result {
	out := Result{
		ID:       r.ID(),
		Tags:     r.Tags(),
		Numerics: r.Numerics(),
		Source:   string(r.From()),
	}
	if r.Scored() {
		sim := r.Similarity()
		out.Similarity = &sim
	}
	out.Secondary = r.Secondary()
	if r.Secondary() != nil {
		merged := r.Merged()
		out.Merged = &merged
	}
	return out
}
