package search

import "github.com/kailas-cloud/tastefeed/internal/domain/vector"

// Compose blends the taste profile and the query text vector into a single
// normalized query vector. alpha is the profile weight, clamped to [0,1].
// Returns false when neither signal is present.
//
// Pure: no I/O, no shared state.
func Compose(profileVec, textVec vector.Vector, alpha float64) (vector.Vector, bool) {
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}

	hasProfile := len(profileVec) > 0 && !profileVec.IsZero()
	hasText := len(textVec) > 0 && !textVec.IsZero()

	switch {
	case hasProfile && hasText:
		return vector.Combine([]float64{alpha, 1 - alpha}, profileVec, textVec).Normalize(), true
	case hasProfile:
		return profileVec.Normalize(), true
	case hasText:
		return textVec.Normalize(), true
	default:
		return nil, false
	}
}
