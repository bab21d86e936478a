package vector

import (
	"math"
	"testing"
)

func TestNormalize_UnitLength(t *testing.T) {
	v := Vector{3, 4}
	n := v.Normalize()
	if got := n.Norm(); math.Abs(got-1) > 1e-6 {
		t.Errorf("expected unit norm, got %f", got)
	}
	// original untouched
	if v[0] != 3 || v[1] != 4 {
		t.Error("Normalize must not mutate the receiver")
	}
}

func TestNormalize_ZeroVector(t *testing.T) {
	v := Vector{0, 0, 0}
	n := v.Normalize()
	if len(n) != 3 {
		t.Fatalf("expected length 3, got %d", len(n))
	}
	for i, x := range n {
		if x != 0 {
			t.Errorf("component %d: expected 0, got %f", i, x)
		}
	}
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b Vector
		want float64
	}{
		{"identical", Vector{1, 0}, Vector{1, 0}, 1},
		{"opposite", Vector{1, 0}, Vector{-1, 0}, -1},
		{"orthogonal", Vector{1, 0}, Vector{0, 1}, 0},
		{"length mismatch", Vector{1, 0}, Vector{1}, 0},
		{"zero operand", Vector{0, 0}, Vector{1, 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Cosine(tt.a, tt.b); math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("Cosine() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestCombine(t *testing.T) {
	a := Vector{1, 0}
	b := Vector{0, 1}
	got := Combine([]float64{0.6, 0.4}, a, b)
	if got == nil {
		t.Fatal("unexpected nil")
	}
	if math.Abs(float64(got[0])-0.6) > 1e-6 || math.Abs(float64(got[1])-0.4) > 1e-6 {
		t.Errorf("Combine() = %v", got)
	}
}

func TestCombine_DimMismatch(t *testing.T) {
	if got := Combine([]float64{1, 1}, Vector{1, 0}, Vector{1}); got != nil {
		t.Errorf("expected nil on dimension mismatch, got %v", got)
	}
}

func TestClone_Independent(t *testing.T) {
	a := Vector{1, 2}
	c := a.Clone()
	c[0] = 9
	if a[0] != 1 {
		t.Error("Clone must not share backing array")
	}
}
