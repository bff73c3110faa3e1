package dcpe

import (
	"math"

	"github.com/vecsec/dcpe-go/pkg/dcpe/logging"
	"github.com/vecsec/dcpe-go/pkg/dcpe/prf"
	"github.com/vecsec/dcpe-go/pkg/dcpe/random"
)

// Config holds the scheme parameters. It is passed by value to NewScheme; the
// scheme keeps its own copy.
type Config struct {
	// Beta is the approximation factor β. Plaintext distance gaps larger than
	// β are preserved among ciphertexts; the noise radius is scale·β/4.
	Beta float64

	// MaxScale bounds the scale factors drawn by KeyGen, which samples from
	// (0, MaxScale]. It must be at least 2^-1021 so no draw rounds to zero,
	// and MaxScale·β/4 must be finite.
	MaxScale float64

	// Algorithm selects the keyed hash of the PRF. The zero value is
	// HMAC-SHA256.
	Algorithm prf.Algorithm

	// Random supplies key material, scale factors and nonces. Nil selects
	// random.Crypto. Tests pass a random.Deterministic source.
	Random random.Source

	// Logger receives debug records about key generation and configuration
	// changes. Nil binds to slog.Default().
	Logger logging.Logger
}

// Validate checks the parameters without applying defaults.
func (c Config) Validate() error {
	if !positive(c.Beta) {
		return errorf("Config", "%w: beta must be > 0, got %v", ErrInvalidConfiguration, c.Beta)
	}
	if err := checkMaxScale("Config", c.MaxScale, c.Beta); err != nil {
		return err
	}
	if !c.Algorithm.Valid() {
		return errorf("Config", "%w: %v", prf.ErrUnsupportedAlgorithm, c.Algorithm)
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.Random == nil {
		c.Random = random.Crypto
	}
	if c.Logger == nil {
		c.Logger = logging.New(nil)
	}
	return c
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

// minMaxScale is the smallest bound for which every 53-bit draw in
// (0, maxScale] stays above zero.
const minMaxScale = 0x1p-1021

// checkMaxScale rejects bounds whose sampled scales could underflow to zero
// or whose noise radius overflows.
func checkMaxScale(op string, maxScale, beta float64) error {
	if !positive(maxScale) {
		return errorf(op, "%w: max scale must be > 0, got %v", ErrInvalidConfiguration, maxScale)
	}
	if maxScale < minMaxScale {
		return errorf(op, "%w: max scale %v is below %v", ErrInvalidConfiguration, maxScale, minMaxScale)
	}
	return checkRadius(op, maxScale, beta)
}

// checkRadius rejects a scale whose noise radius scale·β/4 is not finite.
func checkRadius(op string, scale, beta float64) error {
	if r := noiseRadius(scale, beta); math.IsInf(r, 0) || math.IsNaN(r) {
		return errorf(op, "%w: noise radius for scale %v and beta %v overflows", ErrInvalidConfiguration, scale, beta)
	}
	return nil
}
