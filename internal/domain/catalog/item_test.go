package catalog

import (
	"math"
	"strings"
	"testing"

	"github.com/kailas-cloud/tastefeed/internal/domain/vector"
)

func TestNew_NormalizesEmbedding(t *testing.T) {
	item, err := New("furn_sofa_1", "furniture", nil, nil, nil, vector.Vector{3, 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := item.Vector().Norm(); math.Abs(got-1) > 1e-6 {
		t.Errorf("expected normalized embedding, norm = %f", got)
	}
}

func TestNew_Validation(t *testing.T) {
	vec := vector.Vector{1, 0}
	tests := []struct {
		name string
		id   string
		tags map[string]string
		vec  vector.Vector
	}{
		{"empty id", "", nil, vec},
		{"bad id chars", "sofa one", nil, vec},
		{"id too long", strings.Repeat("x", 257), nil, vec},
		{"missing embedding", "item_1", nil, nil},
		{"empty meta key", "item_1", map[string]string{"": "v"}, vec},
		{"meta value too large", "item_1", map[string]string{"k": strings.Repeat("x", MaxMetaSize+1)}, vec},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.id, "furniture", tt.tags, nil, nil, tt.vec); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestNew_DotAllowedInID(t *testing.T) {
	// catalog IDs like "furn_sofa_lounge-84in_v01" and versioned ".v2" suffixes
	if _, err := New("furn_rug.v2", "furniture", nil, nil, nil, vector.Vector{1}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNew_CopiesInputs(t *testing.T) {
	tags := map[string]string{"subcategory": "sofa"}
	labels := []string{"modern"}
	item, _ := New("item_1", "furniture", tags, nil, labels, vector.Vector{1})

	tags["subcategory"] = "rug"
	labels[0] = "rustic"

	if item.Tags()["subcategory"] != "sofa" || item.Labels()[0] != "modern" {
		t.Error("item must own copies of its metadata")
	}
}
