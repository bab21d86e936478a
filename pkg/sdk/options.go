package tastefeed

import (
	"time"

	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	addrs    []string
	username string
	password string
	db       int

	embedder Embedder

	vectorDimensions int
	hnswM            int
	hnswEFConstruct  int

	defaultAlpha   float64
	defaultLimit   int
	maxLimit       int
	browseFallback bool

	resultCacheTTL time.Duration

	logger *zap.Logger
}

// WithRedis configures the client to connect to a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithCredentials sets the Redis ACL username and logical database.
func WithCredentials(username string, db int) Option {
	return optionFunc(func(c *clientConfig) {
		c.username = username
		c.db = db
	})
}

// WithEmbedder sets the text embedding provider. Required for text queries
// and content-based ingestion; vector-only usage works without it.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithVectorDimensions sets the vector dimension of the catalog index.
// Defaults to 512.
func WithVectorDimensions(dim int) Option {
	return optionFunc(func(c *clientConfig) {
		c.vectorDimensions = dim
	})
}

// WithHNSW configures HNSW index parameters (M and EF construction).
// Defaults: M=32, EFConstruct=400.
func WithHNSW(m, efConstruct int) Option {
	return optionFunc(func(c *clientConfig) {
		c.hnswM = m
		c.hnswEFConstruct = efConstruct
	})
}

// WithSearchDefaults tunes the taste/text blend and result limits.
// Defaults: alpha=0.6, limit=10, max=100.
func WithSearchDefaults(alpha float64, defaultLimit, maxLimit int) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultAlpha = alpha
		c.defaultLimit = defaultLimit
		c.maxLimit = maxLimit
	})
}

// WithoutBrowseFallback makes searches with no taste profile and no text
// query fail with ErrInsufficientSignal instead of falling back to a
// metadata-only browse.
func WithoutBrowseFallback() Option {
	return optionFunc(func(c *clientConfig) {
		c.browseFallback = false
	})
}

// WithResultCache enables caching of search result pages with the given TTL.
func WithResultCache(ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.resultCacheTTL = ttl
	})
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = logger
	})
}
