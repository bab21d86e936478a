package chi

import (
	"fmt"

	"github.com/kailas-cloud/tastefeed/internal/domain/catalog"
	"github.com/kailas-cloud/tastefeed/internal/domain/search/filter"
	"github.com/kailas-cloud/tastefeed/internal/domain/search/result"
	"github.com/kailas-cloud/tastefeed/internal/domain/vector"
	"github.com/kailas-cloud/tastefeed/internal/usecase/ingest"
	searchuc "github.com/kailas-cloud/tastefeed/internal/usecase/search"
)

// Error codes surfaced to clients.
const (
	codeBadRequest        = "bad_request"
	codeValidationFailed  = "validation_failed"
	codeNotFound          = "not_found"
	codeInsufficient      = "insufficient_signal"
	codeVersionConflict   = "version_conflict"
	codeIndexUnavailable  = "index_unavailable"
	codeEmbeddingTimeout  = "embedding_timeout"
	codeEmbeddingProvider = "embedding_provider_error"
	codeInternalError     = "internal_error"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type tasteUpdateRequest struct {
	UserID     string `json:"user_id"`
	LikedID    string `json:"liked_id"`
	DislikedID string `json:"disliked_id,omitempty"`
}

type tasteUpdateResponse struct {
	OK      bool      `json:"ok"`
	Version int       `json:"version"`
	Vector  []float32 `json:"vector"`
}

type searchRequest struct {
	UserID      string   `json:"user_id,omitempty"`
	TextQuery   string   `json:"text_query,omitempty"`
	Category    string   `json:"category,omitempty"`
	Subcategory string   `json:"subcategory,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	MinPrice    *float64 `json:"min_price,omitempty"`
	MaxPrice    *float64 `json:"max_price,omitempty"`
	Alpha       *float64 `json:"alpha,omitempty"`
	Limit       int      `json:"limit,omitempty"`
	Enhance     *bool    `json:"enhance,omitempty"`
}

type searchResultItem struct {
	ID              string                 `json:"id"`
	Metadata        map[string]interface{} `json:"metadata,omitempty"`
	SimilarityScore *float64               `json:"similarity_score,omitempty"`
	SecondaryScore  *float64               `json:"secondary_score,omitempty"`
	MergedScore     *float64               `json:"merged_score,omitempty"`
	Source          string                 `json:"source"`
}

type searchResponse struct {
	Items       []searchResultItem `json:"items"`
	Count       int                `json:"count"`
	EchoedQuery string             `json:"echoed_query,omitempty"`
}

type upsertItemRequest struct {
	Category    string             `json:"category,omitempty"`
	Subcategory string             `json:"subcategory,omitempty"`
	Tags        map[string]string  `json:"tags,omitempty"`
	Numerics    map[string]float64 `json:"numerics,omitempty"`
	Labels      []string           `json:"labels,omitempty"`
	Embedding   []float32          `json:"embedding,omitempty"`
	Content     string             `json:"content,omitempty"`
	ImageB64    string             `json:"image_b64,omitempty"`
}

type itemResponse struct {
	ID           string             `json:"id"`
	Category     string             `json:"category,omitempty"`
	Tags         map[string]string  `json:"tags,omitempty"`
	Numerics     map[string]float64 `json:"numerics,omitempty"`
	Labels       []string           `json:"labels,omitempty"`
	EmbeddingDim int                `json:"embedding_dim"`
}

type itemListResponse struct {
	Items []itemResponse `json:"items"`
	Count int            `json:"count"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// filterFromRequest builds the domain filter from the flat request fields.
func filterFromRequest(req searchRequest) (filter.Filter, error) {
	var ranges map[string]filter.Range
	if req.MinPrice != nil || req.MaxPrice != nil {
		rng, err := filter.NewRange(req.MinPrice, req.MaxPrice)
		if err != nil {
			return filter.Filter{}, fmt.Errorf("price range: %w", err)
		}
		ranges = map[string]filter.Range{filter.FieldPrice: rng}
	}

	f, err := filter.New(req.Category, req.Subcategory, req.Tags, ranges)
	if err != nil {
		return filter.Filter{}, fmt.Errorf("build filter: %w", err)
	}
	return f, nil
}

func searchRequestFromDTO(req searchRequest) (searchuc.Request, error) {
	f, err := filterFromRequest(req)
	if err != nil {
		return searchuc.Request{}, err
	}

	// Enhancement defaults to on; the usecase ignores it without an LLM.
	enhance := true
	if req.Enhance != nil {
		enhance = *req.Enhance
	}

	return searchuc.Request{
		UserID:  req.UserID,
		Query:   req.TextQuery,
		Filter:  f,
		Alpha:   req.Alpha,
		Limit:   req.Limit,
		Enhance: enhance,
	}, nil
}

func itemSpecFromDTO(id string, req upsertItemRequest) ingest.ItemSpec {
	tags := req.Tags
	if req.Subcategory != "" {
		if tags == nil {
			tags = make(map[string]string, 1)
		}
		tags[filter.FieldSubcategory] = req.Subcategory
	}

	return ingest.ItemSpec{
		ID:       id,
		Category: req.Category,
		Tags:     tags,
		Numerics: req.Numerics,
		Labels:   req.Labels,
		Vector:   vector.Vector(req.Embedding),
		Content:  req.Content,
		ImageB64: req.ImageB64,
	}
}

func itemToDTO(item *catalog.Item) itemResponse {
	return itemResponse{
		ID:           item.ID(),
		Category:     item.Category(),
		Tags:         item.Tags(),
		Numerics:     item.Numerics(),
		Labels:       item.Labels(),
		EmbeddingDim: len(item.Vector()),
	}
}

func resultToDTO(r *result.Result) searchResultItem {
	metadata := make(map[string]interface{}, len(r.Tags())+len(r.Numerics()))
	for k, v := range r.Tags() {
		metadata[k] = v
	}
	for k, v := range r.Numerics() {
		metadata[k] = v
	}

	item := searchResultItem{
		ID:       r.ID(),
		Metadata: metadata,
		Source:   string(r.From()),
	}
	if r.Scored() {
		sim := r.Similarity()
		merged := r.Merged()
		item.SimilarityScore = &sim
		item.MergedScore = &merged
		item.SecondaryScore = r.Secondary()
	}
	return item
}
