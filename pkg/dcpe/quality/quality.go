package quality

import (
	"errors"
	"fmt"

	"github.com/montanaflynn/stats"

	"github.com/vecsec/dcpe-go/pkg/dcpe"
	"github.com/vecsec/dcpe-go/pkg/dcpe/random"
)

// ErrInvalidParameter indicates a non-positive count, dimension, bound or β.
var ErrInvalidParameter = errors.New("quality: invalid parameter")

// Triple is one (x, y, z) sample of the evaluation.
type Triple struct {
	X, Y, Z []float64
}

// Encryptor encrypts a single vector. Every call of one evaluation must use
// the same key.
type Encryptor interface {
	Encrypt(plaintext []float64) ([]float64, error)
}

// EncryptorFunc adapts a function to Encryptor.
type EncryptorFunc func([]float64) ([]float64, error)

// Encrypt calls f.
func (f EncryptorFunc) Encrypt(plaintext []float64) ([]float64, error) {
	return f(plaintext)
}

// KeyEncryptor binds key to scheme. Nonces are discarded since the
// evaluation never decrypts.
func KeyEncryptor(scheme *dcpe.Scheme[float64], key *dcpe.SecretKey) Encryptor {
	return EncryptorFunc(func(plaintext []float64) ([]float64, error) {
		ciphertext, _, err := scheme.Encrypt(key, plaintext)
		return ciphertext, err
	})
}

// RandomTriples draws n triples of dim-dimensional vectors with coordinates
// in (0, max].
func RandomTriples(src random.Source, n, dim int, max float64) ([]Triple, error) {
	if n <= 0 || dim <= 0 || !(max > 0) {
		return nil, fmt.Errorf("%w: n=%d dim=%d max=%v", ErrInvalidParameter, n, dim, max)
	}
	vector := func() ([]float64, error) {
		v := make([]float64, dim)
		for i := range v {
			x, err := random.Float64(src, max)
			if err != nil {
				return nil, err
			}
			v[i] = x
		}
		return v, nil
	}

	triples := make([]Triple, n)
	for i := range triples {
		var err error
		if triples[i].X, err = vector(); err != nil {
			return nil, err
		}
		if triples[i].Y, err = vector(); err != nil {
			return nil, err
		}
		if triples[i].Z, err = vector(); err != nil {
			return nil, err
		}
	}
	return triples, nil
}

// Report is the outcome of Evaluate.
type Report struct {
	Trials    int
	Eligible  int
	Preserved int
	// Rate is Preserved/Eligible, or 0 when nothing was eligible.
	Rate float64

	// Distortion of encrypted over plaintext distance, over every non-zero
	// plaintext distance of every trial.
	Mean   float64
	Median float64
	StdDev float64
}

func (r Report) String() string {
	return fmt.Sprintf("trials=%d eligible=%d preserved=%d rate=%.4f distortion(mean=%.4f median=%.4f stddev=%.4f)",
		r.Trials, r.Eligible, r.Preserved, r.Rate, r.Mean, r.Median, r.StdDev)
}

// Evaluate encrypts every vector of triples with enc and compares plaintext
// and ciphertext orderings. Only triples whose plaintext gap exceeds beta
// count towards Rate.
func Evaluate(enc Encryptor, beta float64, triples []Triple) (Report, error) {
	if !(beta > 0) {
		return Report{}, fmt.Errorf("%w: beta=%v", ErrInvalidParameter, beta)
	}

	report := Report{Trials: len(triples)}
	ratios := make(stats.Float64Data, 0, 2*len(triples))

	for i, t := range triples {
		dxy, err := dcpe.Distance(t.X, t.Y)
		if err != nil {
			return Report{}, fmt.Errorf("quality: triple %d: %w", i, err)
		}
		dyz, err := dcpe.Distance(t.Y, t.Z)
		if err != nil {
			return Report{}, fmt.Errorf("quality: triple %d: %w", i, err)
		}

		ex, err := enc.Encrypt(t.X)
		if err != nil {
			return Report{}, fmt.Errorf("quality: encrypt triple %d: %w", i, err)
		}
		ey, err := enc.Encrypt(t.Y)
		if err != nil {
			return Report{}, fmt.Errorf("quality: encrypt triple %d: %w", i, err)
		}
		ez, err := enc.Encrypt(t.Z)
		if err != nil {
			return Report{}, fmt.Errorf("quality: encrypt triple %d: %w", i, err)
		}

		exy, err := dcpe.Distance(ex, ey)
		if err != nil {
			return Report{}, fmt.Errorf("quality: triple %d: %w", i, err)
		}
		eyz, err := dcpe.Distance(ey, ez)
		if err != nil {
			return Report{}, fmt.Errorf("quality: triple %d: %w", i, err)
		}

		if dxy > 0 {
			ratios = append(ratios, exy/dxy)
		}
		if dyz > 0 {
			ratios = append(ratios, eyz/dyz)
		}

		if dxy < dyz-beta {
			report.Eligible++
			if exy < eyz {
				report.Preserved++
			}
		}
	}

	if report.Eligible > 0 {
		report.Rate = float64(report.Preserved) / float64(report.Eligible)
	}
	if len(ratios) > 0 {
		// Float64Data methods only fail on empty input.
		report.Mean, _ = ratios.Mean()
		report.Median, _ = ratios.Median()
		report.StdDev, _ = ratios.StandardDeviation()
	}
	return report, nil
}
