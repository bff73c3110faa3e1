package dcpe

import (
	"golang.org/x/exp/constraints"
	"gonum.org/v1/gonum/floats"
)

// Distance returns the Euclidean distance between a and b.
func Distance[T constraints.Float](a, b []T) (T, error) {
	if len(a) != len(b) {
		return 0, errorf("Distance", "%w: vectors of different lengths (%d vs %d)", ErrDimensionMismatch, len(a), len(b))
	}
	return T(floats.Distance(asFloat64(a), asFloat64(b), 2)), nil
}

// asFloat64 returns v as []float64, copying only when T is not float64.
func asFloat64[T constraints.Float](v []T) []float64 {
	if f, ok := any(v).([]float64); ok {
		return f
	}
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}
