// Package resultcache caches ranked search results in Redis, keyed by every
// input that can change the answer. Profile version is part of the key, so a
// committed preference update makes stale entries unreachable without an
// eviction sweep.
package resultcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/tastefeed/internal/db"
	"github.com/kailas-cloud/tastefeed/internal/domain"
	"github.com/kailas-cloud/tastefeed/internal/domain/search/result"
	"github.com/kailas-cloud/tastefeed/internal/metrics"
)

const keyPrefix = domain.KeyPrefix + "results:"

// store is the consumer interface for the cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Inputs identifies one search answer. Two searches with identical Inputs
// must produce identical ranked lists, which is what makes caching sound.
type Inputs struct {
	ProfileVersion int
	Filter         string // filter.Canonical()
	Query          string
	Enhanced       bool
	Alpha          float64
	Limit          int
}

// Key derives the deterministic cache key.
func (in Inputs) Key() string {
	h := sha256.New()
	h.Write([]byte(strconv.Itoa(in.ProfileVersion)))
	h.Write([]byte{0})
	h.Write([]byte(in.Filter))
	h.Write([]byte{0})
	h.Write([]byte(in.Query))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatBool(in.Enhanced)))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatFloat(in.Alpha, 'g', -1, 64)))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(in.Limit)))
	return keyPrefix + hex.EncodeToString(h.Sum(nil))
}

// Cache wraps result computation with a read-through Redis cache. Concurrent
// identical misses are collapsed into one computation via singleflight.
type Cache struct {
	store  store
	ttl    time.Duration
	group  singleflight.Group
	logger *zap.Logger
}

// New creates a result cache with the given entry TTL.
func New(s store, ttl time.Duration, logger *zap.Logger) *Cache {
	return &Cache{store: s, ttl: ttl, logger: logger}
}

// GetOrCompute returns the cached ranked list for in, computing and storing
// it on a miss. Cache infrastructure failures never fail the search: they
// log and fall through to compute.
func (c *Cache) GetOrCompute(
	ctx context.Context, in Inputs,
	compute func(ctx context.Context) ([]result.Result, error),
) ([]result.Result, error) {
	key := in.Key()

	if results, ok := c.getFromCache(ctx, key); ok {
		metrics.SearchCacheTotal.WithLabelValues("hit").Inc()
		return results, nil
	}
	metrics.SearchCacheTotal.WithLabelValues("miss").Inc()

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		results, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		c.putToCache(ctx, key, results)
		return results, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]result.Result), nil
}

func (c *Cache) getFromCache(ctx context.Context, key string) ([]result.Result, bool) {
	raw, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("result cache read failed", zap.Error(err))
		}
		return nil, false
	}

	results, err := decodeResults(raw)
	if err != nil {
		// A corrupt entry is a miss; the fresh computation overwrites it.
		c.logger.Warn("result cache entry corrupt", zap.Error(err))
		return nil, false
	}
	return results, true
}

func (c *Cache) putToCache(ctx context.Context, key string, results []result.Result) {
	raw, err := encodeResults(results)
	if err != nil {
		c.logger.Warn("result cache encode failed", zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, raw, c.ttl); err != nil {
		c.logger.Warn("result cache write failed", zap.Error(err))
	}
}

type resultDTO struct {
	ID         string             `json:"id"`
	Similarity float64            `json:"similarity"`
	Scored     bool               `json:"scored"`
	Secondary  *float64           `json:"secondary,omitempty"`
	Merged     float64            `json:"merged"`
	Tags       map[string]string  `json:"tags,omitempty"`
	Numerics   map[string]float64 `json:"numerics,omitempty"`
	Source     string             `json:"source"`
}

func encodeResults(results []result.Result) ([]byte, error) {
	dtos := make([]resultDTO, len(results))
	for i := range results {
		r := &results[i]
		dtos[i] = resultDTO{
			ID:         r.ID(),
			Similarity: r.Similarity(),
			Scored:     r.Scored(),
			Secondary:  r.Secondary(),
			Merged:     r.Merged(),
			Tags:       r.Tags(),
			Numerics:   r.Numerics(),
			Source:     string(r.From()),
		}
	}
	raw, err := json.Marshal(dtos)
	if err != nil {
		return nil, fmt.Errorf("marshal results: %w", err)
	}
	return raw, nil
}

func decodeResults(raw []byte) ([]result.Result, error) {
	var dtos []resultDTO
	if err := json.Unmarshal(raw, &dtos); err != nil {
		return nil, fmt.Errorf("unmarshal results: %w", err)
	}

	results := make([]result.Result, len(dtos))
	for i, d := range dtos {
		results[i] = result.Reconstruct(
			d.ID, d.Similarity, d.Scored, d.Secondary, d.Merged,
			d.Tags, d.Numerics, result.Source(d.Source),
		)
	}
	return results, nil
}
