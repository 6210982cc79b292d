// Package embedding holds helpers shared by the embedder implementations
// in its subpackages.
package embedding

import "math"

// Normalize scales v to unit L2 norm in place. Zero vectors are left as is.
func Normalize(v []float64) {
	norm := 0.0
	for _, x := range v {
		norm += x * x
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return
	}
	for i := range v {
		v[i] /= norm
	}
}

// FromFloat32 widens an SDK embedding to the float64 vectors used by the index.
func FromFloat32(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}

// ToFloat32 narrows a vector for SDKs that store float32.
func ToFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}
