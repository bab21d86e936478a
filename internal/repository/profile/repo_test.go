package profile

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/tastefeed/internal/db"
	"github.com/kailas-cloud/tastefeed/internal/domain"
	domprof "github.com/kailas-cloud/tastefeed/internal/domain/profile"
	"github.com/kailas-cloud/tastefeed/internal/domain/vector"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hgetAllFn       func(ctx context.Context, key string) (map[string]string, error)
	hsetVersionedFn func(ctx context.Context, key string, fields map[string]string, expected int) error
	delFn           func(ctx context.Context, key string) error
}

func (m *mockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if m.hgetAllFn != nil {
		return m.hgetAllFn(ctx, key)
	}
	return map[string]string{}, nil
}

func (m *mockStore) HSetVersioned(ctx context.Context, key string, fields map[string]string, expected int) error {
	if m.hsetVersionedFn != nil {
		return m.hsetVersionedFn(ctx, key, fields, expected)
	}
	return nil
}

func (m *mockStore) Del(ctx context.Context, key string) error {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms), ms
}

// --- Get ---

func TestGet_HappyPath(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	vec := vector.Vector{0.6, 0.8}
	ms.hgetAllFn = func(_ context.Context, key string) (map[string]string, error) {
		if key != "tastefeed:profile:user-1" {
			t.Errorf("unexpected key: %s", key)
		}
		return map[string]string{
			"__vector":   vectorToBytes(vec),
			"version":    "3",
			"updated_at": "1700000000000",
		}, nil
	}

	p, err := repo.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.UserID() != "user-1" {
		t.Errorf("expected user-1, got %s", p.UserID())
	}
	if p.Version() != 3 {
		t.Errorf("expected version 3, got %d", p.Version())
	}
	if len(p.Vector()) != 2 || p.Vector()[0] != 0.6 {
		t.Errorf("unexpected vector: %v", p.Vector())
	}
	if p.UpdatedAt() != 1700000000000 {
		t.Errorf("unexpected updated_at: %d", p.UpdatedAt())
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, ms := newTestRepo(t)

	// HGETALL on a missing key returns an empty map, not an error
	ms.hgetAllFn = func(_ context.Context, _ string) (map[string]string, error) {
		return map[string]string{}, nil
	}

	_, err := repo.Get(context.Background(), "nobody")
	if !errors.Is(err, domain.ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestGet_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.hgetAllFn = func(_ context.Context, _ string) (map[string]string, error) {
		return nil, errors.New("connection reset")
	}

	_, err := repo.Get(context.Background(), "user-1")
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, domain.ErrProfileNotFound) {
		t.Error("store error must not map to ErrProfileNotFound")
	}
}

func TestGet_MalformedVector(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.hgetAllFn = func(_ context.Context, _ string) (map[string]string, error) {
		return map[string]string{"__vector": "abc", "version": "1"}, nil
	}

	_, err := repo.Get(context.Background(), "user-1")
	if err == nil {
		t.Fatal("expected error for malformed vector")
	}
}

// --- Save ---

func TestSave_FirstWrite(t *testing.T) {
	repo, ms := newTestRepo(t)

	p, err := domprof.New("user-1", vector.Vector{1, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ms.hsetVersionedFn = func(_ context.Context, key string, fields map[string]string, expected int) error {
		if key != "tastefeed:profile:user-1" {
			t.Errorf("unexpected key: %s", key)
		}
		if expected != 0 {
			t.Errorf("expected CAS against version 0, got %d", expected)
		}
		if fields["version"] != "1" {
			t.Errorf("expected stored version 1, got %s", fields["version"])
		}
		return nil
	}

	if err := repo.Save(context.Background(), p, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSave_VersionConflict(t *testing.T) {
	repo, ms := newTestRepo(t)

	p := domprof.Reconstruct("user-1", vector.Vector{1, 0}, 4, 0)

	ms.hsetVersionedFn = func(_ context.Context, _ string, _ map[string]string, _ int) error {
		return &db.VersionMismatchError{StoredVersion: 5}
	}

	err := repo.Save(context.Background(), p, 3)
	if !errors.Is(err, domain.ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}
	var vc *domain.VersionConflictError
	if !errors.As(err, &vc) {
		t.Fatalf("expected VersionConflictError, got %T", err)
	}
	if vc.CurrentVersion != 5 {
		t.Errorf("expected current version 5, got %d", vc.CurrentVersion)
	}
}

func TestSave_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t)

	p := domprof.Reconstruct("user-1", vector.Vector{1, 0}, 2, 0)

	ms.hsetVersionedFn = func(_ context.Context, _ string, _ map[string]string, _ int) error {
		return errors.New("connection reset")
	}

	err := repo.Save(context.Background(), p, 1)
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, domain.ErrVersionConflict) {
		t.Error("store error must not map to ErrVersionConflict")
	}
}

// --- Round-trip ---

func TestHashFields_RoundTrip(t *testing.T) {
	p := domprof.Reconstruct("user-1", vector.Vector{0.1, -0.5, 0.9}, 7, 1700000000000)

	got, err := parseHashFields("user-1", buildHashFields(p))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Version() != 7 {
		t.Errorf("expected version 7, got %d", got.Version())
	}
	for i, f := range got.Vector() {
		if f != p.Vector()[i] {
			t.Fatalf("vector mismatch at %d: %f != %f", i, f, p.Vector()[i])
		}
	}
}
