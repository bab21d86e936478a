package ingest

import (
	"context"

	"github.com/kailas-cloud/tastefeed/internal/domain/catalog"
)

// ItemStore persists catalog or reference items.
type ItemStore interface {
	Upsert(ctx context.Context, item catalog.Item) (bool, error)
	Get(ctx context.Context, id string) (catalog.Item, error)
	List(ctx context.Context, limit int) ([]catalog.Item, error)
	Delete(ctx context.Context, id string) error
}
