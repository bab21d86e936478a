package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/tastefeed/internal/config"
	"github.com/kailas-cloud/tastefeed/internal/db"
	dbRedis "github.com/kailas-cloud/tastefeed/internal/db/redis"
	"github.com/kailas-cloud/tastefeed/internal/domain"
	logpkg "github.com/kailas-cloud/tastefeed/internal/logger"
	"github.com/kailas-cloud/tastefeed/internal/metrics"
	catalogrepo "github.com/kailas-cloud/tastefeed/internal/repository/catalog"
	"github.com/kailas-cloud/tastefeed/internal/repository/embcache"
	profilerepo "github.com/kailas-cloud/tastefeed/internal/repository/profile"
	retrievalrepo "github.com/kailas-cloud/tastefeed/internal/repository/retrieval"
	chiTransport "github.com/kailas-cloud/tastefeed/internal/transport/chi"
	openaiProvider "github.com/kailas-cloud/tastefeed/internal/transport/openai"
	enhanceuc "github.com/kailas-cloud/tastefeed/internal/usecase/enhance"
	healthuc "github.com/kailas-cloud/tastefeed/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/tastefeed/internal/usecase/ingest"
	preferenceuc "github.com/kailas-cloud/tastefeed/internal/usecase/preference"
	rerankuc "github.com/kailas-cloud/tastefeed/internal/usecase/rerank"
	resultcacheuc "github.com/kailas-cloud/tastefeed/internal/usecase/resultcache"
	searchuc "github.com/kailas-cloud/tastefeed/internal/usecase/search"
	"github.com/kailas-cloud/tastefeed/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting tastefeed API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSearchMetrics()

	// Build embedder chain — composition root
	base := openaiProvider.NewEmbedder(&openaiProvider.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Timeout:    time.Duration(cfg.Embedding.TimeoutSec) * time.Second,
		Logger:     logger,
	})
	embedder := buildEmbedder(base, store, cfg.Embedding, logger)
	logger.Info("Embedder created",
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	// Shared LLM client for reranking and query enhancement.
	var scorer *openaiProvider.Scorer
	if cfg.LLM.APIKey != "" {
		scorer = openaiProvider.NewScorer(&openaiProvider.ScorerConfig{
			APIKey:  cfg.LLM.APIKey,
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.Model,
			Logger:  logger,
		})
		logger.Info("LLM client created", zap.String("model", cfg.LLM.Model))
	}

	// Create repositories (domain-native, no adapters)
	profileRepo := profilerepo.New(store)
	catalogRepo := catalogrepo.New(store, catalogrepo.KeyspaceCatalog)
	referenceRepo := catalogrepo.New(store, catalogrepo.KeyspaceReference)
	retriever := retrievalrepo.New(store, catalogrepo.KeyspaceCatalog)

	if err := catalogRepo.EnsureIndex(ctx,
		cfg.Embedding.Dimensions, cfg.Index.HNSWM, cfg.Index.HNSWEFConstruct,
	); err != nil {
		logger.Fatal("Failed to ensure catalog index", zap.Error(err))
	}
	logger.Info("Catalog index ready", zap.String("index", catalogRepo.IndexName()))

	// Create use case services
	prefSvc := preferenceuc.New(profileRepo, referenceRepo)
	catalogSvc := ingestuc.New(catalogRepo, embedder, base)
	referenceSvc := ingestuc.New(referenceRepo, embedder, base)

	// Pass nil interface (not typed nil pointer!) when a stage is disabled.
	var reranker searchuc.Reranker
	if cfg.Rerank.Enabled && scorer != nil {
		reranker = rerankuc.New(scorer, rerankuc.Options{
			Weight:          cfg.Rerank.Weight,
			Timeout:         time.Duration(cfg.Rerank.TimeoutMS) * time.Millisecond,
			BreakerFailures: cfg.Rerank.BreakerFailures,
			BreakerCooldown: time.Duration(cfg.Rerank.BreakerCooldownSec) * time.Second,
		}, logger)
	}

	var resultCache searchuc.ResultCache
	if cfg.Cache.Enabled {
		resultCache = resultcacheuc.New(store, time.Duration(cfg.Cache.TTLSec)*time.Second, logger)
	}

	var enhancer searchuc.Enhancer
	if cfg.Search.EnhanceQueries && scorer != nil {
		enhancer = enhanceuc.New(scorer, logger)
	}

	searchSvc := searchuc.New(retriever, profileRepo, embedder, reranker, resultCache, enhancer,
		searchuc.Options{
			DefaultAlpha:        cfg.Search.DefaultAlpha,
			OverfetchMultiplier: cfg.Search.OverfetchMultiplier,
			OverfetchMin:        cfg.Search.OverfetchMin,
			DefaultLimit:        cfg.Search.DefaultLimit,
			MaxLimit:            cfg.Search.MaxLimit,
			BrowseFallback:      *cfg.Search.BrowseFallback,
		})

	// Health service
	var llmChecker healthuc.ProviderChecker
	if scorer != nil {
		llmChecker = scorer
	}
	healthSvc := healthuc.New(store, newEmbeddingHealthChecker(base), llmChecker)

	// Create chi server and router
	server := chiTransport.NewServer(prefSvc, searchSvc, catalogSvc, referenceSvc, healthSvc)
	router := chiTransport.Router(server, cfg.Auth.APIKeys, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached.
func buildEmbedder(
	base domain.Embedder,
	store db.Store,
	cfg config.EmbeddingConfig,
	logger *zap.Logger,
) domain.Embedder {
	if store == nil {
		return base
	}
	ttl := time.Duration(cfg.CacheTTL) * time.Second
	return embcache.New(base, store, ttl, metrics.EmbeddingCacheTotal, logger)
}

// embeddingHealthChecker adapts domain.Embedder to health.ProviderChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}
