package tastefeed

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/tastefeed/internal/domain"
	"github.com/kailas-cloud/tastefeed/internal/domain/catalog"
	"github.com/kailas-cloud/tastefeed/internal/domain/profile"
	"github.com/kailas-cloud/tastefeed/internal/domain/search/filter"
	"github.com/kailas-cloud/tastefeed/internal/domain/search/result"
	"github.com/kailas-cloud/tastefeed/internal/domain/vector"
	healthuc "github.com/kailas-cloud/tastefeed/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/tastefeed/internal/usecase/ingest"
	searchuc "github.com/kailas-cloud/tastefeed/internal/usecase/search"
)

func TestNew_RequiresAddress(t *testing.T) {
	_, err := New(context.Background())
	if err == nil {
		t.Fatal("expected error without database address")
	}
}

func TestUpdateTaste(t *testing.T) {
	c := &Client{prefSvc: &mockPreferenceUC{
		updateFn: func(_ context.Context, userID, likedID, dislikedID string) (profile.Profile, error) {
			if userID != "user-1" || likedID != "ref-a" || dislikedID != "ref-b" {
				t.Errorf("unexpected args: %q %q %q", userID, likedID, dislikedID)
			}
			return profile.Reconstruct("user-1", vector.Vector{0.6, 0.8}, 3, 0), nil
		},
	}}

	p, err := c.UpdateTaste(context.Background(), "user-1", "ref-a", "ref-b")
	if err != nil {
		t.Fatalf("UpdateTaste: %v", err)
	}
	if p.UserID != "user-1" || p.Version != 3 || len(p.Vector) != 2 {
		t.Errorf("profile = %+v", p)
	}
}

func TestUpdateTaste_WrapsSentinel(t *testing.T) {
	c := &Client{prefSvc: &mockPreferenceUC{
		updateFn: func(_ context.Context, _, _, _ string) (profile.Profile, error) {
			return profile.Profile{}, domain.ErrNotFound
		},
	}}

	_, err := c.UpdateTaste(context.Background(), "user-1", "ref-a", "")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSearch_BuildsRequest(t *testing.T) {
	min, max := 50.0, 500.0
	alpha := 0.8
	var got searchuc.Request

	c := &Client{searchSvc: &mockSearchUC{
		searchFn: func(_ context.Context, req searchuc.Request) ([]result.Result, error) {
			got = req
			return nil, nil
		},
	}}

	_, err := c.Search(context.Background(), Query{
		UserID:      "user-1",
		Text:        "velvet sofa",
		Category:    "furniture",
		Subcategory: "sofa",
		Labels:      []string{"velvet"},
		MinPrice:    &min,
		MaxPrice:    &max,
		Alpha:       &alpha,
		Limit:       7,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if got.UserID != "user-1" || got.Query != "velvet sofa" || got.Limit != 7 {
		t.Errorf("request = %+v", got)
	}
	if got.Alpha == nil || *got.Alpha != 0.8 {
		t.Errorf("alpha = %v, want 0.8", got.Alpha)
	}
	if got.Filter.Category() != "furniture" || got.Filter.Subcategory() != "sofa" {
		t.Errorf("filter = %+v", got.Filter)
	}
	r, ok := got.Filter.Ranges()[filter.FieldPrice]
	if !ok || *r.Min() != 50.0 || *r.Max() != 500.0 {
		t.Errorf("price range = %+v", got.Filter.Ranges())
	}
}

func TestSearch_InvalidPriceRange(t *testing.T) {
	min, max := 500.0, 50.0
	c := &Client{searchSvc: &mockSearchUC{
		searchFn: func(_ context.Context, _ searchuc.Request) ([]result.Result, error) {
			t.Fatal("search must not be called on invalid input")
			return nil, nil
		},
	}}

	_, err := c.Search(context.Background(), Query{Text: "q", MinPrice: &min, MaxPrice: &max})
	if err == nil {
		t.Fatal("expected error for min > max")
	}
}

func TestSearch_ConvertsResults(t *testing.T) {
	secondary := 0.7
	c := &Client{searchSvc: &mockSearchUC{
		searchFn: func(_ context.Context, _ searchuc.Request) ([]result.Result, error) {
			return []result.Result{
				result.Reconstruct("item-a", 0.9, true, &secondary, 0.84,
					map[string]string{"category": "furniture"}, nil, result.SourceKNN),
				result.NewBrowse("item-b", nil, map[string]float64{"price": 120}),
			}, nil
		},
	}}

	results, err := c.Search(context.Background(), Query{Text: "q"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("len = %d, want 2", len(results))
	}

	scored := results[0]
	if scored.Similarity == nil || *scored.Similarity != 0.9 {
		t.Errorf("similarity = %v, want 0.9", scored.Similarity)
	}
	if scored.Secondary == nil || *scored.Secondary != 0.7 {
		t.Errorf("secondary = %v, want 0.7", scored.Secondary)
	}
	if scored.Merged == nil || *scored.Merged != 0.84 {
		t.Errorf("merged = %v, want 0.84", scored.Merged)
	}
	if scored.Source != "knn" {
		t.Errorf("source = %q, want knn", scored.Source)
	}

	browse := results[1]
	if browse.Similarity != nil || browse.Secondary != nil || browse.Merged != nil {
		t.Errorf("browse hit must carry no scores: %+v", browse)
	}
	if browse.Source != "browse" {
		t.Errorf("source = %q, want browse", browse.Source)
	}
}

func TestItemService_UpsertAndGet(t *testing.T) {
	var gotSpec ingestuc.ItemSpec
	mock := &mockIngestUC{
		upsertFn: func(_ context.Context, spec ingestuc.ItemSpec) (catalog.Item, bool, error) {
			gotSpec = spec
			return catalog.Reconstruct(spec.ID, spec.Category, spec.Tags,
				spec.Numerics, spec.Labels, spec.Vector), true, nil
		},
		getFn: func(_ context.Context, id string) (catalog.Item, error) {
			return catalog.Reconstruct(id, "furniture", nil, nil, nil, vector.Vector{1, 0}), nil
		},
	}
	c := &Client{catalogSvc: mock}

	item, created, err := c.Catalog().Upsert(context.Background(), Item{
		ID:       "item-1",
		Category: "furniture",
		Numerics: map[string]float64{"price": 499},
		Vector:   []float32{0.6, 0.8},
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if !created || item.ID != "item-1" {
		t.Errorf("created = %v, item = %+v", created, item)
	}
	if gotSpec.Category != "furniture" || gotSpec.Numerics["price"] != 499 {
		t.Errorf("spec = %+v", gotSpec)
	}

	got, err := c.Catalog().Get(context.Background(), "item-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != "item-1" || got.Category != "furniture" {
		t.Errorf("item = %+v", got)
	}
}

func TestItemService_GetWrapsSentinel(t *testing.T) {
	c := &Client{referenceSvc: &mockIngestUC{
		getFn: func(_ context.Context, _ string) (catalog.Item, error) {
			return catalog.Item{}, domain.ErrNotFound
		},
	}}

	_, err := c.References().Get(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestHealth(t *testing.T) {
	c := &Client{healthSvc: &mockHealthUC{
		report: healthuc.Report{
			Status: healthuc.Degraded,
			Checks: map[string]healthuc.CheckResult{
				"database":  healthuc.CheckError,
				"embedding": healthuc.CheckOK,
			},
		},
	}}

	report := c.Health(context.Background())
	if report.Status != "degraded" {
		t.Errorf("status = %q, want degraded", report.Status)
	}
	if report.Checks["embedding"] != "ok" {
		t.Errorf("checks = %+v", report.Checks)
	}
}
