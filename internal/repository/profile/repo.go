// Package profile persists taste profiles as Redis hashes with versioned
// compare-and-swap writes.
package profile

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/kailas-cloud/tastefeed/internal/db"
	"github.com/kailas-cloud/tastefeed/internal/domain"
	domprof "github.com/kailas-cloud/tastefeed/internal/domain/profile"
	"github.com/kailas-cloud/tastefeed/internal/domain/vector"
)

// store is the consumer interface for profiles (ISP).
type store interface {
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HSetVersioned(ctx context.Context, key string, fields map[string]string, expected int) error
	Del(ctx context.Context, key string) error
}

// Repo implements usecase/preference.ProfileStore.
type Repo struct {
	store store
}

// New creates a profile repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Get returns a user's profile, or domain.ErrProfileNotFound when the user
// has no preference history yet.
func (r *Repo) Get(ctx context.Context, userID string) (domprof.Profile, error) {
	key := profileKey(userID)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return domprof.Profile{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	if len(m) == 0 {
		return domprof.Profile{}, domain.ErrProfileNotFound
	}
	return parseHashFields(userID, m)
}

// Save writes a profile only if the stored version still equals
// expectedVersion (0 for a first write). A losing write returns
// domain.VersionConflictError with the version that won.
func (r *Repo) Save(ctx context.Context, p domprof.Profile, expectedVersion int) error {
	key := profileKey(p.UserID())
	fields := buildHashFields(p)

	if err := r.store.HSetVersioned(ctx, key, fields, expectedVersion); err != nil {
		var mismatch *db.VersionMismatchError
		if errors.As(err, &mismatch) {
			return domain.NewVersionConflict(mismatch.StoredVersion)
		}
		return fmt.Errorf("versioned hset %s: %w", key, err)
	}
	return nil
}

// Delete removes a user's profile.
func (r *Repo) Delete(ctx context.Context, userID string) error {
	key := profileKey(userID)
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

func profileKey(userID string) string {
	return domain.KeyPrefix + "profile:" + userID
}

func buildHashFields(p domprof.Profile) map[string]string {
	return map[string]string{
		"__vector":   vectorToBytes(p.Vector()),
		"version":    strconv.Itoa(p.Version()),
		"updated_at": strconv.FormatInt(p.UpdatedAt(), 10),
	}
}

func parseHashFields(userID string, m map[string]string) (domprof.Profile, error) {
	vec := bytesToVector(m["__vector"])
	if vec == nil {
		return domprof.Profile{}, fmt.Errorf("profile %s: malformed taste vector", userID)
	}
	version, err := strconv.Atoi(m["version"])
	if err != nil {
		return domprof.Profile{}, fmt.Errorf("profile %s: malformed version: %w", userID, err)
	}
	updatedAt, _ := strconv.ParseInt(m["updated_at"], 10, 64)
	return domprof.Reconstruct(userID, vec, version, updatedAt), nil
}

// vectorToBytes serializes a vector to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v vector.Vector) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

// bytesToVector deserializes a binary string back to a vector.
func bytesToVector(s string) vector.Vector {
	b := []byte(s)
	if len(b) == 0 || len(b)%4 != 0 {
		return nil
	}
	v := make(vector.Vector, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
