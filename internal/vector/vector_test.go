package vector

import (
	"math"
	"testing"
)

func TestL2Norm(t *testing.T) {
	tests := map[string]struct {
		input []float32
		want  float64
	}{
		"classic triangle": {input: []float32{3, 4}, want: 5},
		"unit axis":        {input: []float32{0, 1, 0}, want: 1},
		"zero vector":      {input: []float32{0, 0, 0}, want: 0},
		"empty":            {input: nil, want: 0},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got := L2Norm(tc.input)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("expected norm %v, got %v", tc.want, got)
			}
		})
	}
}

func TestNormalizeL2(t *testing.T) {
	v := []float32{3, 4}
	NormalizeL2(v)

	if math.Abs(float64(v[0])-0.6) > 1e-6 || math.Abs(float64(v[1])-0.8) > 1e-6 {
		t.Fatalf("unexpected components after normalization: %v", v)
	}
	if norm := L2Norm(v); math.Abs(norm-1) > 1e-6 {
		t.Fatalf("expected unit norm, got %v", norm)
	}
}

func TestNormalizeL2ZeroVector(t *testing.T) {
	v := []float32{0, 0, 0}
	NormalizeL2(v)

	for i, x := range v {
		if x != 0 {
			t.Fatalf("component %d changed to %v", i, x)
		}
		if math.IsNaN(float64(x)) {
			t.Fatalf("component %d became NaN", i)
		}
	}
}

func TestNormalizeL2Idempotent(t *testing.T) {
	v := []float32{0.1, -0.2, 0.5, 0.9}
	NormalizeL2(v)
	first := make([]float32, len(v))
	copy(first, v)

	NormalizeL2(v)
	for i := range v {
		if math.Abs(float64(v[i]-first[i])) > 1e-6 {
			t.Fatalf("component %d drifted from %v to %v", i, first[i], v[i])
		}
	}
}
