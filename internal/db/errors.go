package db

import (
	"errors"
	"strconv"
)

// Sentinel errors for database operations.
var (
	ErrKeyNotFound     = errors.New("db: key not found")
	ErrIndexExists     = errors.New("db: index already exists")
	ErrVersionMismatch = errors.New("db: version mismatch")
)

// Op constants map to Redis command names for error context.
const (
	OpCreateIndex = "FT.CREATE"
	OpIndexInfo   = "FT.INFO"
	OpSearch      = "FT.SEARCH"
	OpDel         = "DEL"
	OpHGetAll     = "HGETALL"
	OpHSet        = "HSET"
	OpEval        = "EVAL"
	OpExists      = "EXISTS"
	OpScan        = "SCAN"
	OpGet         = "GET"
	OpSet         = "SET"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// VersionMismatchError reports a failed versioned write together with the
// version currently stored. Unwraps to ErrVersionMismatch.
type VersionMismatchError struct {
	StoredVersion int
}

func (e *VersionMismatchError) Error() string {
	return "db: version mismatch, stored version " + strconv.Itoa(e.StoredVersion)
}

func (e *VersionMismatchError) Unwrap() error { return ErrVersionMismatch }
