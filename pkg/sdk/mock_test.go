package tastefeed

import (
	"context"

	"github.com/kailas-cloud/tastefeed/internal/domain/catalog"
	"github.com/kailas-cloud/tastefeed/internal/domain/profile"
	"github.com/kailas-cloud/tastefeed/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/tastefeed/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/tastefeed/internal/usecase/ingest"
	searchuc "github.com/kailas-cloud/tastefeed/internal/usecase/search"
)

type mockPreferenceUC struct {
	updateFn func(ctx context.Context, userID, likedID, dislikedID string) (profile.Profile, error)
}

func (m *mockPreferenceUC) Update(
	ctx context.Context, userID, likedID, dislikedID string,
) (profile.Profile, error) {
	return m.updateFn(ctx, userID, likedID, dislikedID)
}

type mockSearchUC struct {
	searchFn func(ctx context.Context, req searchuc.Request) ([]result.Result, error)
}

func (m *mockSearchUC) Search(ctx context.Context, req searchuc.Request) ([]result.Result, error) {
	return m.searchFn(ctx, req)
}

type mockIngestUC struct {
	upsertFn func(ctx context.Context, spec ingestuc.ItemSpec) (catalog.Item, bool, error)
	getFn    func(ctx context.Context, id string) (catalog.Item, error)
	listFn   func(ctx context.Context, limit int) ([]catalog.Item, error)
	deleteFn func(ctx context.Context, id string) error
}

func (m *mockIngestUC) Upsert(ctx context.Context, spec ingestuc.ItemSpec) (catalog.Item, bool, error) {
	return m.upsertFn(ctx, spec)
}

func (m *mockIngestUC) Get(ctx context.Context, id string) (catalog.Item, error) {
	return m.getFn(ctx, id)
}

func (m *mockIngestUC) List(ctx context.Context, limit int) ([]catalog.Item, error) {
	return m.listFn(ctx, limit)
}

func (m *mockIngestUC) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(_ context.Context) healthuc.Report {
	return m.report
}
