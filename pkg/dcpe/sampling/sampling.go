package sampling

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"golang.org/x/exp/constraints"
	"gonum.org/v1/gonum/stat/distuv"
)

// ErrInvalidParameter indicates distribution parameters that do not describe
// a distribution (min > max, negative variance or count).
var ErrInvalidParameter = errors.New("sampling: invalid parameter")

const engineLabel = "dcpe/sampling/v1"

// NewSource returns the generator used by every sampler for seed. Exposed so
// callers can draw longer reproducible streams with the same engine.
func NewSource(seed uint64) rand.Source {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:8], seed)
	copy(key[8:], engineLabel)
	return rand.NewChaCha8(key)
}

// Uniform samples one value from the uniform distribution over [min, max].
func Uniform[T constraints.Float](min, max T, seed uint64) (T, error) {
	if !(min <= max) {
		return 0, fmt.Errorf("%w: uniform min %v > max %v", ErrInvalidParameter, min, max)
	}
	if min == max {
		return min, nil
	}
	dist := distuv.Uniform{Min: float64(min), Max: float64(max), Src: NewSource(seed)}
	v := T(dist.Rand())
	// float32 rounding may step just outside the interval
	if v > max {
		v = max
	}
	if v < min {
		v = min
	}
	return v, nil
}

// NormalSeries samples count independent values from Normal(mean, variance).
func NormalSeries[T constraints.Float](mean, variance T, seed uint64, count int) ([]T, error) {
	if variance < 0 || math.IsNaN(float64(variance)) {
		return nil, fmt.Errorf("%w: variance %v", ErrInvalidParameter, variance)
	}
	if count < 0 {
		return nil, fmt.Errorf("%w: count %d", ErrInvalidParameter, count)
	}

	dist := distuv.Normal{
		Mu:    float64(mean),
		Sigma: math.Sqrt(float64(variance)),
		Src:   NewSource(seed),
	}

	samples := make([]T, count)
	for i := range samples {
		samples[i] = T(dist.Rand())
	}
	return samples, nil
}

// NormalMultivariateIdentity samples a point from the multivariate normal
// distribution centred on (mean, ..., mean) with identity covariance. With an
// identity covariance the coordinates are independent, so this is a normal
// series of unit variance.
func NormalMultivariateIdentity[T constraints.Float](mean T, dimensions int, seed uint64) ([]T, error) {
	if dimensions < 0 {
		return nil, fmt.Errorf("%w: dimensions %d", ErrInvalidParameter, dimensions)
	}
	return NormalSeries(mean, 1, seed, dimensions)
}
