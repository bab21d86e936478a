// Package catalog persists items as Redis hashes under a keyspace prefix and
// owns the FT vector index over them. The same repository serves both the
// catalog keyspace and the reference-artwork keyspace.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/kailas-cloud/tastefeed/internal/db"
	"github.com/kailas-cloud/tastefeed/internal/domain"
	domcat "github.com/kailas-cloud/tastefeed/internal/domain/catalog"
	"github.com/kailas-cloud/tastefeed/internal/domain/search/filter"
)

// Keyspaces served by this repository.
const (
	KeyspaceCatalog   = "catalog"
	KeyspaceReference = "reference"
)

// store is the consumer interface for items (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Repo implements item storage for one keyspace.
type Repo struct {
	store    store
	keyspace string
}

// New creates an item repository bound to a keyspace.
func New(s store, keyspace string) *Repo {
	return &Repo{store: s, keyspace: keyspace}
}

// IndexName returns the FT index name for this keyspace.
func (r *Repo) IndexName() string {
	return domain.KeyPrefix + r.keyspace + ":idx"
}

// Upsert creates or replaces an item. Returns true if created.
func (r *Repo) Upsert(ctx context.Context, item domcat.Item) (bool, error) {
	key := r.itemKey(item.ID())

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("check exists %s: %w", key, err)
	}

	if err := r.store.HSet(ctx, key, buildHashFields(item)); err != nil {
		return false, fmt.Errorf("hset %s: %w", key, err)
	}
	return !exists, nil
}

// Get returns an item by ID.
func (r *Repo) Get(ctx context.Context, id string) (domcat.Item, error) {
	key := r.itemKey(id)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return domcat.Item{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	if len(m) == 0 {
		return domcat.Item{}, domain.ErrNotFound
	}
	return parseHashFields(id, m), nil
}

// GetMulti returns items by IDs in one round-trip, skipping missing ones.
func (r *Repo) GetMulti(ctx context.Context, ids []string) ([]domcat.Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.itemKey(id)
	}

	maps, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall multi: %w", err)
	}

	items := make([]domcat.Item, 0, len(ids))
	for i, m := range maps {
		if len(m) == 0 {
			continue
		}
		items = append(items, parseHashFields(ids[i], m))
	}
	return items, nil
}

// List returns up to limit items from the keyspace, ordered by ID. Intended
// for small keyspaces such as reference artworks.
func (r *Repo) List(ctx context.Context, limit int) ([]domcat.Item, error) {
	keys, err := r.store.Scan(ctx, r.itemKey("*"))
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", r.keyspace, err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	sort.Strings(keys)
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}

	maps, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall multi: %w", err)
	}

	prefix := r.itemKey("")
	items := make([]domcat.Item, 0, len(keys))
	for i, m := range maps {
		if len(m) == 0 {
			continue
		}
		items = append(items, parseHashFields(strings.TrimPrefix(keys[i], prefix), m))
	}
	return items, nil
}

// Delete removes an item.
func (r *Repo) Delete(ctx context.Context, id string) error {
	key := r.itemKey(id)

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		return domain.ErrNotFound
	}

	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

// EnsureIndex creates the HNSW index for this keyspace if it does not exist.
func (r *Repo) EnsureIndex(ctx context.Context, dim, hnswM, efConstruct int) error {
	name := r.IndexName()

	exists, err := r.store.IndexExists(ctx, name)
	if err != nil {
		return fmt.Errorf("check index %s: %w", name, err)
	}
	if exists {
		return nil
	}

	def := &db.IndexDefinition{
		Name:     name,
		Prefixes: []string{r.itemKey("")},
		Fields: []db.IndexField{
			{Name: filter.FieldCategory, Type: db.IndexFieldTag},
			{Name: filter.FieldSubcategory, Type: db.IndexFieldTag},
			{Name: filter.FieldLabels, Type: db.IndexFieldTag, TagSeparator: filter.LabelSeparator},
			{Name: filter.FieldPrice, Type: db.IndexFieldNumeric},
			{
				Name:              "__vector",
				Alias:             "vector",
				Type:              db.IndexFieldVector,
				VectorAlgo:        db.VectorHNSW,
				VectorDim:         dim,
				VectorDistance:    db.DistanceCosine,
				VectorM:           hnswM,
				VectorEFConstruct: efConstruct,
			},
		},
	}

	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index %s: %w", name, err)
	}
	return nil
}

func (r *Repo) itemKey(id string) string {
	return domain.KeyPrefix + r.keyspace + ":" + id
}
