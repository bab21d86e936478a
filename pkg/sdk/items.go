package tastefeed

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/tastefeed/internal/domain/catalog"
	ingestuc "github.com/kailas-cloud/tastefeed/internal/usecase/ingest"
)

// ItemService manages items within one keyspace (catalog or references).
type ItemService struct {
	svc ingestUseCase
}

// Catalog returns the service for searchable catalog items.
func (c *Client) Catalog() *ItemService {
	return &ItemService{svc: c.catalogSvc}
}

// References returns the service for reference items, the like/dislike
// targets of taste feedback. References are not searchable.
func (c *Client) References() *ItemService {
	return &ItemService{svc: c.referenceSvc}
}

// Upsert creates or updates an item. An empty ID gets a generated one.
// Returns the stored item and true if it was created.
func (s *ItemService) Upsert(ctx context.Context, item Item) (Item, bool, error) {
	stored, created, err := s.svc.Upsert(ctx, toInternalSpec(item))
	if err != nil {
		return Item{}, false, fmt.Errorf("upsert item: %w", err)
	}
	return fromInternalItem(&stored), created, nil
}

// Get retrieves an item by ID.
func (s *ItemService) Get(ctx context.Context, id string) (Item, error) {
	item, err := s.svc.Get(ctx, id)
	if err != nil {
		return Item{}, fmt.Errorf("get item: %w", err)
	}
	return fromInternalItem(&item), nil
}

// List returns up to limit items in unspecified order.
func (s *ItemService) List(ctx context.Context, limit int) ([]Item, error) {
	items, err := s.svc.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	out := make([]Item, len(items))
	for i := range items {
		out[i] = fromInternalItem(&items[i])
	}
	return out, nil
}

// Delete removes an item by ID.
func (s *ItemService) Delete(ctx context.Context, id string) error {
	if err := s.svc.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

func toInternalSpec(item Item) ingestuc.ItemSpec {
	return ingestuc.ItemSpec{
		ID:       item.ID,
		Category: item.Category,
		Tags:     item.Tags,
		Numerics: item.Numerics,
		Labels:   item.Labels,
		Vector:   item.Vector,
		Content:  item.Content,
	}
}

func fromInternalItem(item *catalog.Item) Item {
	return Item{
		ID:       item.ID(),
		Category: item.Category(),
		Tags:     item.Tags(),
		Numerics: item.Numerics(),
		Labels:   item.Labels(),
		Vector:   item.Vector(),
	}
}
