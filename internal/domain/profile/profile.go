// Package profile defines the per-user taste profile aggregate.
package profile

import (
	"fmt"
	"regexp"
	"time"

	"github.com/kailas-cloud/tastefeed/internal/domain/vector"
)

var userIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Profile is a user's taste fingerprint (immutable value object).
// The version is monotonically increasing: 1 on the first preference event,
// +1 on every committed update. Cache keys embed the version, so entries
// bound to an older vector become unreachable the moment a new one commits.
type Profile struct {
	userID    string
	vec       vector.Vector
	version   int
	updatedAt int64
}

// New validates and creates a first-version Profile.
func New(userID string, vec vector.Vector) (Profile, error) {
	if err := ValidateUserID(userID); err != nil {
		return Profile{}, err
	}
	if len(vec) == 0 {
		return Profile{}, fmt.Errorf("taste vector is required")
	}
	return Profile{
		userID:    userID,
		vec:       vec.Clone(),
		version:   1,
		updatedAt: time.Now().UnixMilli(),
	}, nil
}

// Reconstruct creates a Profile without validation (storage hydration).
func Reconstruct(userID string, vec vector.Vector, version int, updatedAt int64) Profile {
	return Profile{userID: userID, vec: vec, version: version, updatedAt: updatedAt}
}

// ValidateUserID checks the user ID shape shared by all entry points.
func ValidateUserID(userID string) error {
	if userID == "" {
		return fmt.Errorf("user ID is required")
	}
	if len(userID) > 128 {
		return fmt.Errorf("user ID too long (max 128)")
	}
	if !userIDRegex.MatchString(userID) {
		return fmt.Errorf("user ID must be alphanumeric with underscores and hyphens")
	}
	return nil
}

// UserID returns the owning user's identifier.
func (p Profile) UserID() string { return p.userID }

// Vector returns the taste vector.
func (p Profile) Vector() vector.Vector { return p.vec }

// Version returns the profile version.
func (p Profile) Version() int { return p.version }

// UpdatedAt returns the last commit time in unix millis.
func (p Profile) UpdatedAt() int64 { return p.updatedAt }

// Bumped returns a copy carrying the new vector and version+1.
func (p Profile) Bumped(vec vector.Vector) Profile {
	return Profile{
		userID:    p.userID,
		vec:       vec.Clone(),
		version:   p.version + 1,
		updatedAt: time.Now().UnixMilli(),
	}
}
