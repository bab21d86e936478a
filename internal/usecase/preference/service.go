// Package preference applies like/dislike feedback to a user's taste
// profile with compare-and-swap retries.
package preference

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/tastefeed/internal/domain"
	"github.com/kailas-cloud/tastefeed/internal/domain/profile"
	"github.com/kailas-cloud/tastefeed/internal/domain/taste"
	"github.com/kailas-cloud/tastefeed/internal/domain/vector"
	"github.com/kailas-cloud/tastefeed/internal/metrics"
)

// maxSaveRetries bounds the CAS retry loop when concurrent updates to the
// same profile collide.
const maxSaveRetries = 3

// Service handles taste profile updates from user feedback.
type Service struct {
	profiles ProfileStore
	refs     ReferenceReader
}

// New creates a preference service.
func New(profiles ProfileStore, refs ReferenceReader) *Service {
	return &Service{profiles: profiles, refs: refs}
}

// Update folds feedback into the user's taste profile and returns the new
// profile. likedID is required, dislikedID optional. Each attempt re-reads
// the current profile, so a lost CAS race never discards the concurrent
// writer's contribution.
func (s *Service) Update(
	ctx context.Context, userID, likedID, dislikedID string,
) (profile.Profile, error) {
	if err := profile.ValidateUserID(userID); err != nil {
		return profile.Profile{}, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	if likedID == "" {
		return profile.Profile{}, fmt.Errorf("%w: liked item is required", domain.ErrInvalidInput)
	}

	liked, disliked, err := s.referenceVectors(ctx, likedID, dislikedID)
	if err != nil {
		return profile.Profile{}, err
	}

	var lastErr error
	for attempt := 0; attempt < maxSaveRetries; attempt++ {
		p, err := s.applyOnce(ctx, userID, liked, disliked)
		if err == nil {
			metrics.ProfileUpdatesTotal.WithLabelValues("ok").Inc()
			return p, nil
		}
		if !errors.Is(err, domain.ErrVersionConflict) {
			return profile.Profile{}, err
		}
		metrics.ProfileUpdatesTotal.WithLabelValues("conflict").Inc()
		lastErr = err
	}

	return profile.Profile{}, fmt.Errorf("update profile for %s: %w", userID, lastErr)
}

// applyOnce performs one read-modify-write round.
func (s *Service) applyOnce(
	ctx context.Context, userID string, liked, disliked vector.Vector,
) (profile.Profile, error) {
	current, err := s.profiles.Get(ctx, userID)
	switch {
	case errors.Is(err, domain.ErrProfileNotFound):
		updated := taste.Update(nil, liked, disliked)
		p, err := profile.New(userID, updated)
		if err != nil {
			return profile.Profile{}, fmt.Errorf("build profile: %w", err)
		}
		if err := s.profiles.Save(ctx, p, 0); err != nil {
			return profile.Profile{}, err
		}
		return p, nil
	case err != nil:
		return profile.Profile{}, fmt.Errorf("get profile: %w", err)
	}

	updated := taste.Update(current.Vector(), liked, disliked)
	p := current.Bumped(updated)
	if err := s.profiles.Save(ctx, p, current.Version()); err != nil {
		return profile.Profile{}, err
	}
	return p, nil
}

// referenceVectors loads the liked and disliked reference vectors in one
// round-trip. A missing item is a caller error, not a storage fault.
func (s *Service) referenceVectors(
	ctx context.Context, likedID, dislikedID string,
) (liked, disliked vector.Vector, err error) {
	ids := []string{likedID}
	if dislikedID != "" {
		ids = append(ids, dislikedID)
	}

	items, err := s.refs.GetMulti(ctx, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("get reference items: %w", err)
	}

	byID := make(map[string]vector.Vector, len(items))
	for i := range items {
		byID[items[i].ID()] = items[i].Vector()
	}

	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, nil, fmt.Errorf("reference item %s: %w", id, domain.ErrNotFound)
		}
	}
	return byID[likedID], byID[dislikedID], nil
}
