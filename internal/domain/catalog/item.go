// Package catalog defines the item aggregate shared by catalog entries and
// reference artworks. Embeddings are precomputed at ingestion and immutable
// until re-ingestion.
package catalog

import (
	"fmt"
	"regexp"

	"github.com/kailas-cloud/tastefeed/internal/domain/vector"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// Limits on item metadata.
const (
	MaxTags     = 32
	MaxMetaSize = 4096 // per metadata value, bytes
)

// Item is a catalog item or reference artwork (immutable value object).
type Item struct {
	id       string
	category string
	tags     map[string]string
	numerics map[string]float64
	labels   []string
	vec      vector.Vector
}

// New validates and creates an Item. The embedding is normalized here once;
// nothing downstream re-normalizes stored vectors.
func New(
	id, category string, tags map[string]string,
	numerics map[string]float64, labels []string, vec vector.Vector,
) (Item, error) {
	if id == "" {
		return Item{}, fmt.Errorf("item ID is required")
	}
	if len(id) > 256 {
		return Item{}, fmt.Errorf("item ID too long (max 256)")
	}
	if !idRegex.MatchString(id) {
		return Item{}, fmt.Errorf("item ID must be alphanumeric with underscores, dots and hyphens")
	}
	if len(labels) > MaxTags {
		return Item{}, fmt.Errorf("too many tags (max %d)", MaxTags)
	}
	for k, v := range tags {
		if k == "" {
			return Item{}, fmt.Errorf("metadata key is required")
		}
		if len(v) > MaxMetaSize {
			return Item{}, fmt.Errorf("metadata value for %q too large (max %d bytes)", k, MaxMetaSize)
		}
	}
	if len(vec) == 0 {
		return Item{}, fmt.Errorf("embedding is required")
	}

	return Item{
		id:       id,
		category: category,
		tags:     cloneStringMap(tags),
		numerics: cloneFloat64Map(numerics),
		labels:   append([]string(nil), labels...),
		vec:      vec.Normalize(),
	}, nil
}

// Reconstruct creates an Item without validation (storage hydration).
func Reconstruct(
	id, category string, tags map[string]string,
	numerics map[string]float64, labels []string, vec vector.Vector,
) Item {
	return Item{id: id, category: category, tags: tags, numerics: numerics, labels: labels, vec: vec}
}

// ID returns the item identifier.
func (i *Item) ID() string { return i.id }

// Category returns the item category (e.g. "furniture", "painting").
func (i *Item) Category() string { return i.category }

// Tags returns the string metadata fields (subcategory, title, asset ref, ...).
func (i *Item) Tags() map[string]string { return i.tags }

// Numerics returns the numeric metadata fields (price, dimensions, ...).
func (i *Item) Numerics() map[string]float64 { return i.numerics }

// Labels returns the free-form tag labels (style tags and the like).
func (i *Item) Labels() []string { return i.labels }

// Vector returns the precomputed embedding.
func (i *Item) Vector() vector.Vector { return i.vec }

func cloneStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	c := make(map[string]string, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

func cloneFloat64Map(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	c := make(map[string]float64, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
