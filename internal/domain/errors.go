package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals an unknown reference or catalog ID. Caller bug, not retried.
	ErrNotFound = errors.New("not found")
	// ErrProfileNotFound signals a user without a taste profile yet.
	ErrProfileNotFound = errors.New("taste profile not found")
	// ErrInsufficientSignal signals a search with no derivable query vector
	// and the browse fallback disabled.
	ErrInsufficientSignal = errors.New("insufficient signal: no profile and no text query")
	// ErrIndexUnavailable signals an unreachable vector store. Retryable.
	ErrIndexUnavailable = errors.New("vector index unavailable")
	// ErrEmbeddingTimeout signals an embedding provider deadline hit. Retryable.
	ErrEmbeddingTimeout = errors.New("embedding request timed out")
	// ErrEmbeddingProvider signals an embedding provider failure.
	ErrEmbeddingProvider = errors.New("embedding provider error")
	// ErrVersionConflict signals an optimistic concurrency conflict on a profile write.
	ErrVersionConflict = errors.New("profile version conflict")
	// ErrInvalidInput signals a request that fails domain validation.
	ErrInvalidInput = errors.New("invalid input")
)

// VersionConflictError wraps ErrVersionConflict with the version currently stored.
type VersionConflictError struct {
	CurrentVersion int
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("%s: current version is %d", ErrVersionConflict.Error(), e.CurrentVersion)
}

func (e *VersionConflictError) Unwrap() error { return ErrVersionConflict }

// NewVersionConflict creates a version conflict error.
func NewVersionConflict(currentVersion int) error {
	return &VersionConflictError{CurrentVersion: currentVersion}
}
