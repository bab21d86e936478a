// Package result defines a single ranked search hit.
package result

// Source identifies how a hit was produced.
type Source string

const (
	// SourceKNN marks hits from vector similarity search.
	SourceKNN Source = "knn"
	// SourceBrowse marks hits from an unranked metadata-only scan.
	SourceBrowse Source = "browse"
)

// Result is a single search hit. Similarity is cosine similarity in [-1, 1];
// Scored is false for browse hits, which carry no similarity at all.
// Secondary and Merged are set only after a successful rerank pass.
type Result struct {
	id         string
	similarity float64
	scored     bool
	secondary  *float64
	merged     float64
	tags       map[string]string
	numerics   map[string]float64
	source     Source
}

// New creates a similarity-scored search result.
func New(id string, similarity float64, tags map[string]string, numerics map[string]float64) Result {
	return Result{
		id:         id,
		similarity: similarity,
		scored:     true,
		merged:     similarity,
		tags:       tags,
		numerics:   numerics,
		source:     SourceKNN,
	}
}

// NewBrowse creates an unscored hit from a metadata-only scan.
func NewBrowse(id string, tags map[string]string, numerics map[string]float64) Result {
	return Result{id: id, tags: tags, numerics: numerics, source: SourceBrowse}
}

// Reconstruct rebuilds a Result from a cache entry, including rerank scores.
func Reconstruct(
	id string, similarity float64, scored bool, secondary *float64,
	merged float64, tags map[string]string, numerics map[string]float64, source Source,
) Result {
	return Result{
		id: id, similarity: similarity, scored: scored, secondary: secondary,
		merged: merged, tags: tags, numerics: numerics, source: source,
	}
}

// ID returns the item identifier.
func (r *Result) ID() string { return r.id }

// Similarity returns the raw cosine similarity score.
func (r *Result) Similarity() float64 { return r.similarity }

// Scored reports whether the hit carries a similarity score.
func (r *Result) Scored() bool { return r.scored }

// Secondary returns the optional rerank score, nil when the pass was skipped
// or degraded.
func (r *Result) Secondary() *float64 { return r.secondary }

// Merged returns the final ranking score (similarity alone unless reranked).
func (r *Result) Merged() float64 { return r.merged }

// Tags returns the string metadata fields.
func (r *Result) Tags() map[string]string { return r.tags }

// Numerics returns the numeric metadata fields.
func (r *Result) Numerics() map[string]float64 { return r.numerics }

// From returns where the hit came from.
func (r *Result) From() Source { return r.source }

// WithRerank returns a copy carrying a secondary score and the merged total.
func (r Result) WithRerank(secondary, merged float64) Result {
	r.secondary = &secondary
	r.merged = merged
	return r
}
