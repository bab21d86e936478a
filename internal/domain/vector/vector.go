// Package vector provides the embedding vector type shared by all layers.
// Vectors are stored as float32 (wire format) and accumulated in float64.
package vector

import "math"

// NormEpsilon is the floor below which a vector norm is treated as zero.
// Guards the degenerate case of exact cancellation during taste updates.
const NormEpsilon = 1e-12

// Vector is a fixed-length embedding. All comparisons assume L2-normalized
// operands; Normalize is the only place that enforces it.
type Vector []float32

// Norm returns the L2 norm.
func (v Vector) Norm() float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// IsZero reports whether the norm is below NormEpsilon.
func (v Vector) IsZero() bool {
	return v.Norm() < NormEpsilon
}

// Normalize returns a unit-length copy. A near-zero vector is returned
// unchanged (as a copy) instead of dividing by zero.
func (v Vector) Normalize() Vector {
	out := make(Vector, len(v))
	norm := v.Norm()
	if norm < NormEpsilon {
		copy(out, v)
		return out
	}
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

// Clone returns a copy of the vector.
func (v Vector) Clone() Vector {
	if v == nil {
		return nil
	}
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

// Cosine returns the cosine similarity between two vectors, in [-1, 1].
// Mismatched lengths and zero vectors yield 0.
func Cosine(a, b Vector) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Combine returns sum(weights[i] * vs[i]) accumulated in float64.
// All vectors must share the same length; mismatches return nil.
func Combine(weights []float64, vs ...Vector) Vector {
	if len(vs) == 0 || len(weights) != len(vs) {
		return nil
	}
	dim := len(vs[0])
	acc := make([]float64, dim)
	for i, v := range vs {
		if len(v) != dim {
			return nil
		}
		for j, x := range v {
			acc[j] += weights[i] * float64(x)
		}
	}
	out := make(Vector, dim)
	for j, x := range acc {
		out[j] = float32(x)
	}
	return out
}
