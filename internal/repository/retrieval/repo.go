// Package retrieval runs candidate retrieval against the FT vector index:
// KNN over the catalog keyspace and an unranked browse listing for
// filter-only requests.
package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/kailas-cloud/tastefeed/internal/db"
	"github.com/kailas-cloud/tastefeed/internal/domain"
	"github.com/kailas-cloud/tastefeed/internal/domain/search/filter"
	"github.com/kailas-cloud/tastefeed/internal/domain/search/result"
	"github.com/kailas-cloud/tastefeed/internal/domain/vector"
	catalogrepo "github.com/kailas-cloud/tastefeed/internal/repository/catalog"
)

// store is the consumer interface for retrieval (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchList(ctx context.Context, index, query string, offset, limit int, fields []string) (*db.SearchResult, error)
}

// Repo implements usecase/search.Retriever.
type Repo struct {
	store     store
	indexName string
	keyPrefix string
}

// New creates a retrieval repository over one keyspace index.
func New(s store, keyspace string) *Repo {
	return &Repo{
		store:     s,
		indexName: domain.KeyPrefix + keyspace + ":idx",
		keyPrefix: domain.KeyPrefix + keyspace + ":",
	}
}

// SearchKNN returns the k nearest items to vec, pre-filtered server-side.
// Store failures surface as domain.ErrIndexUnavailable so the transport can
// signal a retryable condition.
func (r *Repo) SearchKNN(
	ctx context.Context, vec vector.Vector, f filter.Filter, k int,
) ([]result.Result, error) {
	q := &db.KNNQuery{
		IndexName: r.indexName,
		Filter:    f,
		Vector:    vec,
		K:         k,
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%w: knn on %s: %w", domain.ErrIndexUnavailable, r.indexName, err)
	}

	return r.parseKNNResults(sr), nil
}

// Browse returns up to limit items matching the filter without similarity
// scoring, for requests that carry no query vector at all.
func (r *Repo) Browse(ctx context.Context, f filter.Filter, limit int) ([]result.Result, error) {
	query := browseQuery(f)

	sr, err := r.store.SearchList(ctx, r.indexName, query, 0, limit, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: browse on %s: %w", domain.ErrIndexUnavailable, r.indexName, err)
	}

	if sr == nil || sr.Total == 0 {
		return nil, nil
	}

	results := make([]result.Result, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		id := strings.TrimPrefix(entry.Key, r.keyPrefix)
		tags, numerics := parseEntryFields(entry)
		results = append(results, result.NewBrowse(id, tags, numerics))
	}
	return results, nil
}

func (r *Repo) parseKNNResults(sr *db.SearchResult) []result.Result {
	if sr == nil || sr.Total == 0 {
		return nil
	}

	results := make([]result.Result, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		id := strings.TrimPrefix(entry.Key, r.keyPrefix)
		tags, numerics := parseEntryFields(entry)
		results = append(results, result.New(id, entry.Score, tags, numerics))
	}
	return results
}

// parseEntryFields splits flat hash fields into tags and numerics. The
// ingest writer records numeric field names in a marker field; everything
// not named there is a string, so a tag value like "2024" stays a tag.
func parseEntryFields(entry db.SearchEntry) (map[string]string, map[string]float64) {
	tags := make(map[string]string)
	numerics := make(map[string]float64)

	numericNames := make(map[string]bool)
	if names := entry.Fields[catalogrepo.FieldNumericNames]; names != "" {
		for _, n := range strings.Split(names, ",") {
			numericNames[n] = true
		}
	}

	for k, v := range entry.Fields {
		if k == "__vector" || k == catalogrepo.FieldNumericNames {
			continue
		}
		if numericNames[k] {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				numerics[k] = f
			}
			continue
		}
		tags[k] = v
	}
	return tags, numerics
}

// browseQuery renders the filter as a plain FT query string. An empty filter
// lists everything.
func browseQuery(f filter.Filter) string {
	if f.IsEmpty() {
		return "*"
	}

	var parts []string
	if f.Category() != "" {
		parts = append(parts, "@"+filter.FieldCategory+":{"+escapeTag(f.Category())+"}")
	}
	if f.Subcategory() != "" {
		parts = append(parts, "@"+filter.FieldSubcategory+":{"+escapeTag(f.Subcategory())+"}")
	}
	for _, label := range f.Labels() {
		parts = append(parts, "@"+filter.FieldLabels+":{"+escapeTag(label)+"}")
	}
	ranges := f.Ranges()
	fields := make([]string, 0, len(ranges))
	for field := range ranges {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		rng := ranges[field]
		lo, hi := "-inf", "+inf"
		if m := rng.Min(); m != nil {
			lo = strconv.FormatFloat(*m, 'g', -1, 64)
		}
		if m := rng.Max(); m != nil {
			hi = strconv.FormatFloat(*m, 'g', -1, 64)
		}
		parts = append(parts, "@"+field+":["+lo+" "+hi+"]")
	}
	return strings.Join(parts, " ")
}

var tagEscaper = strings.NewReplacer(
	",", "\\,", ".", "\\.", "-", "\\-", " ", "\\ ",
	"{", "\\{", "}", "\\}", ":", "\\:", "@", "\\@",
)

func escapeTag(s string) string {
	return tagEscaper.Replace(s)
}
