// Package taste implements the preference update rule that folds a single
// liked/disliked choice into a user's taste vector.
package taste

import "github.com/kailas-cloud/tastefeed/internal/domain/vector"

// Weights applied to a single preference event. A disliked reference counts
// at half strength, so one negative choice cannot overwhelm accumulated
// positive signal.
const (
	LikeWeight    = 1.0
	DislikeWeight = 0.5
)

// Update computes the new taste vector. Pure: identical inputs always yield
// the identical output, persistence and version bumps belong to the caller.
//
// current nil  -> normalize(liked)
// disliked nil -> normalize(current + liked)
// otherwise    -> normalize(current + liked - 0.5*disliked)
//
// current is expected to be already normalized, so the pre-normalization
// magnitude is bounded (~2.5) and a single epsilon-guarded normalize at the
// end is numerically safe.
func Update(current, liked, disliked vector.Vector) vector.Vector {
	if current == nil {
		return liked.Normalize()
	}

	if disliked == nil {
		return vector.Combine([]float64{1, LikeWeight}, current, liked).Normalize()
	}

	return vector.Combine(
		[]float64{1, LikeWeight, -DislikeWeight},
		current, liked, disliked,
	).Normalize()
}
