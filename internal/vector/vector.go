// Package vector provides small numeric helpers for embedding vectors.
package vector

import "math"

// L2Norm returns the Euclidean length of v.
func L2Norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// NormalizeL2 scales v in place to unit Euclidean length. Zero vectors are
// left untouched so callers never see NaN components.
func NormalizeL2(v []float32) {
	norm := L2Norm(v)
	if norm == 0 {
		return
	}
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
}
