package preference

import (
	"context"

	"github.com/kailas-cloud/tastefeed/internal/domain/catalog"
	"github.com/kailas-cloud/tastefeed/internal/domain/profile"
)

// ProfileStore persists taste profiles with optimistic concurrency.
type ProfileStore interface {
	Get(ctx context.Context, userID string) (profile.Profile, error)
	Save(ctx context.Context, p profile.Profile, expectedVersion int) error
}

// ReferenceReader reads reference items whose vectors drive taste updates.
type ReferenceReader interface {
	GetMulti(ctx context.Context, ids []string) ([]catalog.Item, error)
}
