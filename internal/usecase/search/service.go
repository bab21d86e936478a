// Package search runs the personalized retrieval pipeline: compose a query
// vector from the taste profile and the query text, over-fetch candidates
// from the vector index, re-check the filter exactly, rank, and optionally
// rerank, with the whole computation behind a result cache.
package search

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/kailas-cloud/tastefeed/internal/domain"
	"github.com/kailas-cloud/tastefeed/internal/domain/profile"
	"github.com/kailas-cloud/tastefeed/internal/domain/search/filter"
	"github.com/kailas-cloud/tastefeed/internal/domain/search/result"
	"github.com/kailas-cloud/tastefeed/internal/domain/vector"
	"github.com/kailas-cloud/tastefeed/internal/metrics"
	"github.com/kailas-cloud/tastefeed/internal/usecase/resultcache"
)

// Request is one search invocation. UserID and Query are each optional, but
// at least one must carry signal unless browse fallback is enabled.
type Request struct {
	UserID  string
	Query   string
	Filter  filter.Filter
	Alpha   *float64
	Limit   int
	Enhance bool
}

// Options carries the tunables of the pipeline.
type Options struct {
	DefaultAlpha        float64
	OverfetchMultiplier int
	OverfetchMin        int
	DefaultLimit        int
	MaxLimit            int
	BrowseFallback      bool
}

// Service handles personalized catalog search.
type Service struct {
	retriever Retriever
	profiles  ProfileReader
	embed     Embedder
	reranker  Reranker
	cache     ResultCache
	enhancer  Enhancer
	opts      Options
}

// New creates a search service. reranker, cache, and enhancer may be nil.
func New(
	retriever Retriever, profiles ProfileReader, embed Embedder,
	reranker Reranker, cache ResultCache, enhancer Enhancer, opts Options,
) *Service {
	return &Service{
		retriever: retriever,
		profiles:  profiles,
		embed:     embed,
		reranker:  reranker,
		cache:     cache,
		enhancer:  enhancer,
		opts:      opts,
	}
}

// Search executes the retrieval pipeline and returns at most req.Limit
// ranked results.
func (s *Service) Search(ctx context.Context, req Request) ([]result.Result, error) {
	limit, err := s.resolveLimit(req.Limit)
	if err != nil {
		return nil, err
	}
	alpha := s.resolveAlpha(req.Alpha)

	// The profile read happens before the cache lookup: its version is part
	// of the cache key, which is what makes preference updates invalidate
	// cached answers.
	profileVec, profileVersion, err := s.loadProfile(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	metrics.SearchRequestsTotal.WithLabelValues(s.mode(profileVec, req.Query)).Inc()

	compute := func(ctx context.Context) ([]result.Result, error) {
		return s.retrieve(ctx, req, profileVec, alpha, limit)
	}

	if s.cache == nil {
		return compute(ctx)
	}
	return s.cache.GetOrCompute(ctx, resultcache.Inputs{
		ProfileVersion: profileVersion,
		Filter:         req.Filter.Canonical(),
		Query:          req.Query,
		// Enhancement rewrites the embedded query, so the key carries
		// whether it actually applies, not the raw request flag.
		Enhanced: req.Enhance && s.enhancer != nil && req.Query != "",
		Alpha:    alpha,
		Limit:    limit,
	}, compute)
}

// retrieve is the uncached pipeline body.
func (s *Service) retrieve(
	ctx context.Context, req Request, profileVec vector.Vector, alpha float64, limit int,
) ([]result.Result, error) {
	query := req.Query
	if req.Enhance && s.enhancer != nil && query != "" {
		query = s.enhancer.Enhance(ctx, query).Query
	}

	textVec, err := s.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	composed, ok := Compose(profileVec, textVec, alpha)
	if !ok {
		if s.opts.BrowseFallback {
			return s.retriever.Browse(ctx, req.Filter, limit)
		}
		return nil, domain.ErrInsufficientSignal
	}

	candidates, err := s.retriever.SearchKNN(ctx, composed, req.Filter, s.overfetch(limit))
	if err != nil {
		return nil, err
	}

	// Exact re-check: backend pre-filtering is treated as an optimization,
	// never as the source of truth.
	matched := candidates[:0]
	for _, c := range candidates {
		if req.Filter.Matches(c.Tags(), c.Numerics()) {
			matched = append(matched, c)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Similarity() != matched[j].Similarity() {
			return matched[i].Similarity() > matched[j].Similarity()
		}
		return matched[i].ID() < matched[j].ID()
	})
	if len(matched) > limit {
		matched = matched[:limit]
	}

	if s.reranker != nil && req.Query != "" {
		matched = s.reranker.Rerank(ctx, req.Query, matched)
	}
	return matched, nil
}

func (s *Service) loadProfile(ctx context.Context, userID string) (vector.Vector, int, error) {
	if userID == "" {
		return nil, 0, nil
	}
	if err := profile.ValidateUserID(userID); err != nil {
		return nil, 0, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	p, err := s.profiles.Get(ctx, userID)
	if err != nil {
		// A user without a profile searches like an anonymous one.
		if errors.Is(err, domain.ErrProfileNotFound) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("get profile: %w", err)
	}
	return p.Vector(), p.Version(), nil
}

func (s *Service) embedQuery(ctx context.Context, query string) (vector.Vector, error) {
	if query == "" {
		return nil, nil
	}

	embResult, err := s.embed.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}
	domain.UsageFromContext(ctx).AddTokens(embResult.TotalTokens)
	return embResult.Embedding, nil
}

func (s *Service) resolveLimit(limit int) (int, error) {
	if limit < 0 {
		return 0, fmt.Errorf("%w: limit must be positive", domain.ErrInvalidInput)
	}
	if limit == 0 {
		return s.opts.DefaultLimit, nil
	}
	if s.opts.MaxLimit > 0 && limit > s.opts.MaxLimit {
		return s.opts.MaxLimit, nil
	}
	return limit, nil
}

func (s *Service) resolveAlpha(alpha *float64) float64 {
	if alpha == nil {
		return s.opts.DefaultAlpha
	}
	return *alpha
}

func (s *Service) overfetch(limit int) int {
	k := s.opts.OverfetchMultiplier * limit
	if k < s.opts.OverfetchMin {
		k = s.opts.OverfetchMin
	}
	return k
}

func (s *Service) mode(profileVec vector.Vector, query string) string {
	hasProfile := len(profileVec) > 0
	hasText := query != ""
	switch {
	case hasProfile && hasText:
		return "hybrid"
	case hasProfile:
		return "profile"
	case hasText:
		return "text"
	default:
		return "browse"
	}
}
