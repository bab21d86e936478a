package tastefeed

import "github.com/kailas-cloud/tastefeed/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound           = domain.ErrNotFound
	ErrProfileNotFound    = domain.ErrProfileNotFound
	ErrInvalidInput       = domain.ErrInvalidInput
	ErrInsufficientSignal = domain.ErrInsufficientSignal
	ErrIndexUnavailable   = domain.ErrIndexUnavailable
	ErrEmbeddingTimeout   = domain.ErrEmbeddingTimeout
	ErrEmbeddingProvider  = domain.ErrEmbeddingProvider
	ErrVersionConflict    = domain.ErrVersionConflict
)
