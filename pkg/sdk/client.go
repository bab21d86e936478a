package tastefeed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/tastefeed/internal/db"
	dbRedis "github.com/kailas-cloud/tastefeed/internal/db/redis"
	"github.com/kailas-cloud/tastefeed/internal/domain"
	"github.com/kailas-cloud/tastefeed/internal/domain/catalog"
	"github.com/kailas-cloud/tastefeed/internal/domain/profile"
	"github.com/kailas-cloud/tastefeed/internal/domain/search/result"
	catalogrepo "github.com/kailas-cloud/tastefeed/internal/repository/catalog"
	profilerepo "github.com/kailas-cloud/tastefeed/internal/repository/profile"
	retrievalrepo "github.com/kailas-cloud/tastefeed/internal/repository/retrieval"
	healthuc "github.com/kailas-cloud/tastefeed/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/tastefeed/internal/usecase/ingest"
	preferenceuc "github.com/kailas-cloud/tastefeed/internal/usecase/preference"
	resultcacheuc "github.com/kailas-cloud/tastefeed/internal/usecase/resultcache"
	searchuc "github.com/kailas-cloud/tastefeed/internal/usecase/search"
)

const (
	defaultReadinessTimeout = 10 * time.Second

	defaultDimensions = 512
	defaultAlpha      = 0.6
	defaultLimit      = 10
	defaultMaxLimit   = 100
)

// Narrow use case interfaces so tests can substitute fakes.
type preferenceUseCase interface {
	Update(ctx context.Context, userID, likedID, dislikedID string) (profile.Profile, error)
}

type searchUseCase interface {
	Search(ctx context.Context, req searchuc.Request) ([]result.Result, error)
}

type ingestUseCase interface {
	Upsert(ctx context.Context, spec ingestuc.ItemSpec) (catalog.Item, bool, error)
	Get(ctx context.Context, id string) (catalog.Item, error)
	List(ctx context.Context, limit int) ([]catalog.Item, error)
	Delete(ctx context.Context, id string) error
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the tastefeed SDK entry point.
type Client struct {
	store        db.Store
	prefSvc      preferenceUseCase
	searchSvc    searchUseCase
	catalogSvc   ingestUseCase
	referenceSvc ingestUseCase
	healthSvc    healthUseCase
}

// New creates a tastefeed Client and connects to the database.
// The provided context bounds the initial readiness check and index creation.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		vectorDimensions: defaultDimensions,
		defaultAlpha:     defaultAlpha,
		defaultLimit:     defaultLimit,
		maxLimit:         defaultMaxLimit,
		browseFallback:   true,
	}
	for _, o := range opts {
		o.apply(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("tastefeed: database address required (use WithRedis)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Username: cfg.username,
		Password: cfg.password,
		DB:       cfg.db,
	})
	if err != nil {
		return nil, fmt.Errorf("tastefeed: create redis store: %w", err)
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("tastefeed: database not ready: %w", err)
	}

	return wireClient(ctx, store, cfg)
}

func wireClient(ctx context.Context, store db.Store, cfg *clientConfig) (*Client, error) {
	var embedder domain.Embedder = noEmbedder{}
	if cfg.embedder != nil {
		embedder = &embedderAdapter{inner: cfg.embedder}
	}

	profileRepo := profilerepo.New(store)
	catalogRepo := catalogrepo.New(store, catalogrepo.KeyspaceCatalog)
	referenceRepo := catalogrepo.New(store, catalogrepo.KeyspaceReference)
	retriever := retrievalrepo.New(store, catalogrepo.KeyspaceCatalog)

	if err := catalogRepo.EnsureIndex(ctx, cfg.vectorDimensions, cfg.hnswM, cfg.hnswEFConstruct); err != nil {
		store.Close()
		return nil, fmt.Errorf("tastefeed: ensure catalog index: %w", err)
	}

	var resultCache searchuc.ResultCache
	if cfg.resultCacheTTL > 0 {
		resultCache = resultcacheuc.New(store, cfg.resultCacheTTL, cfg.logger)
	}

	searchSvc := searchuc.New(retriever, profileRepo, embedder, nil, resultCache, nil,
		searchuc.Options{
			DefaultAlpha:        cfg.defaultAlpha,
			OverfetchMultiplier: 3,
			OverfetchMin:        30,
			DefaultLimit:        cfg.defaultLimit,
			MaxLimit:            cfg.maxLimit,
			BrowseFallback:      cfg.browseFallback,
		})

	return &Client{
		store:        store,
		prefSvc:      preferenceuc.New(profileRepo, referenceRepo),
		searchSvc:    searchSvc,
		catalogSvc:   ingestuc.New(catalogRepo, embedder, nil),
		referenceSvc: ingestuc.New(referenceRepo, embedder, nil),
		healthSvc:    healthuc.New(store, nil, nil),
	}, nil
}

// Close releases the database connection.
func (c *Client) Close() {
	c.store.Close()
}
