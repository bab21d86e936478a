// Package ingest handles item ingestion into a keyspace: resolve the
// embedding (precomputed, text, or image), build the domain item, persist.
package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/kailas-cloud/tastefeed/internal/domain"
	"github.com/kailas-cloud/tastefeed/internal/domain/catalog"
	"github.com/kailas-cloud/tastefeed/internal/domain/vector"
)

// ItemSpec is the transport-level description of an item to ingest.
// Exactly one of Vector, Content, and ImageB64 must be set.
type ItemSpec struct {
	ID       string
	Category string
	Tags     map[string]string
	Numerics map[string]float64
	Labels   []string
	Vector   vector.Vector
	Content  string
	ImageB64 string
}

// Service ingests items into one keyspace.
type Service struct {
	store         ItemStore
	embedder      domain.Embedder
	imageEmbedder domain.ImageEmbedder
}

// New creates an ingest service. embedder and imageEmbedder may be nil when
// the deployment only accepts precomputed vectors.
func New(store ItemStore, embedder domain.Embedder, imageEmbedder domain.ImageEmbedder) *Service {
	return &Service{store: store, embedder: embedder, imageEmbedder: imageEmbedder}
}

// Upsert resolves the embedding, builds the item, and persists it. A missing
// ID gets a generated UUID. Returns the stored item and whether it was
// created rather than replaced.
func (s *Service) Upsert(ctx context.Context, spec ItemSpec) (catalog.Item, bool, error) {
	vec, err := s.resolveVector(ctx, spec)
	if err != nil {
		return catalog.Item{}, false, err
	}

	id := spec.ID
	if id == "" {
		id = uuid.NewString()
	}

	item, err := catalog.New(id, spec.Category, spec.Tags, spec.Numerics, spec.Labels, vec)
	if err != nil {
		return catalog.Item{}, false, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	created, err := s.store.Upsert(ctx, item)
	if err != nil {
		return catalog.Item{}, false, fmt.Errorf("upsert item %s: %w", id, err)
	}
	return item, created, nil
}

// Get returns one item by ID.
func (s *Service) Get(ctx context.Context, id string) (catalog.Item, error) {
	item, err := s.store.Get(ctx, id)
	if err != nil {
		return catalog.Item{}, fmt.Errorf("get item %s: %w", id, err)
	}
	return item, nil
}

// List returns up to limit items ordered by ID.
func (s *Service) List(ctx context.Context, limit int) ([]catalog.Item, error) {
	items, err := s.store.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

// Delete removes one item by ID.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete item %s: %w", id, err)
	}
	return nil
}

func (s *Service) resolveVector(ctx context.Context, spec ItemSpec) (vector.Vector, error) {
	sources := 0
	if len(spec.Vector) > 0 {
		sources++
	}
	if spec.Content != "" {
		sources++
	}
	if spec.ImageB64 != "" {
		sources++
	}
	if sources != 1 {
		return nil, fmt.Errorf(
			"%w: exactly one of embedding, content, and image is required", domain.ErrInvalidInput,
		)
	}

	switch {
	case len(spec.Vector) > 0:
		return spec.Vector, nil
	case spec.Content != "":
		if s.embedder == nil {
			return nil, errors.New("text embedding is not configured")
		}
		res, err := s.embedder.Embed(ctx, spec.Content)
		if err != nil {
			return nil, fmt.Errorf("embed content: %w", err)
		}
		domain.UsageFromContext(ctx).AddTokens(res.TotalTokens)
		return res.Embedding, nil
	default:
		if s.imageEmbedder == nil {
			return nil, errors.New("image embedding is not configured")
		}
		res, err := s.imageEmbedder.EmbedImage(ctx, spec.ImageB64)
		if err != nil {
			return nil, fmt.Errorf("embed image: %w", err)
		}
		domain.UsageFromContext(ctx).AddTokens(res.TotalTokens)
		return res.Embedding, nil
	}
}
