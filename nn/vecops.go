package nn

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Dot returns the dot product of two equal-length vectors.
func Dot(a, b []float64) float64 {
	return floats.Dot(a, b)
}

// AddScaled returns dst[i] + s*src[i] as a new vector.
func AddScaled(dst []float64, s float64, src []float64) []float64 {
	out := make([]float64, len(dst))
	copy(out, dst)
	floats.AddScaled(out, s, src)
	return out
}

// Scale returns s*v as a new vector.
func Scale(s float64, v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	floats.Scale(s, out)
	return out
}

// IsFinite reports whether v is neither NaN nor Inf.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// VecFinite reports whether every element of v is finite.
func VecFinite(v []float64) bool {
	for _, x := range v {
		if !IsFinite(x) {
			return false
		}
	}
	return true
}

// MatFinite reports whether every element of the row-slice matrix m is finite.
func MatFinite(m [][]float64) bool {
	for _, row := range m {
		if !VecFinite(row) {
			return false
		}
	}
	return true
}

func cloneVec(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}

func cloneMat(m [][]float64) [][]float64 {
	out := make([][]float64, len(m))
	for i, row := range m {
		out[i] = cloneVec(row)
	}
	return out
}
