package dcpe

import (
	"encoding/binary"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/vecsec/dcpe-go/internal/zeroize"
	"github.com/vecsec/dcpe-go/pkg/dcpe/prf"
	"github.com/vecsec/dcpe-go/pkg/dcpe/sampling"
)

// noiseRadius is the bound r = s/4·β on the norm of the noise vector.
func noiseRadius(scale, beta float64) float64 {
	return scale / 4 * beta
}

// tapeSeeds derives the direction and radius seeds from the PRF tape of the
// nonce. Both are little-endian words of the tape, so they depend on the key
// and not only on the public nonce.
func tapeSeeds(key *SecretKey, nonce []byte) (direction, radius uint64, err error) {
	tape, err := prf.Sign(key.prf, nonce)
	if err != nil {
		return 0, 0, err
	}
	defer zeroize.Bytes(tape)

	return binary.LittleEndian.Uint64(tape[0:8]), binary.LittleEndian.Uint64(tape[8:16]), nil
}

// noiseVector returns λ_m for (key, nonce, d): a point drawn uniformly from the
// d-ball of radius s·β/4. The direction is a standard normal sample projected
// on the unit sphere and the magnitude is r·x'^(1/d) with x' uniform in [0, 1].
func noiseVector(key *SecretKey, beta float64, nonce []byte, d int) ([]float64, error) {
	if d == 0 {
		return nil, nil
	}

	dirSeed, radSeed, err := tapeSeeds(key, nonce)
	if err != nil {
		return nil, err
	}

	u, err := sampling.NormalMultivariateIdentity(0.0, d, dirSeed)
	if err != nil {
		return nil, err
	}
	xPrime, err := sampling.Uniform(0.0, 1.0, radSeed)
	if err != nil {
		return nil, err
	}

	x := noiseRadius(key.scale, beta) * math.Pow(xPrime, 1/float64(d))

	norm := floats.Norm(u, 2)
	if norm == 0 {
		// Degenerate draw: no direction, so no noise. Decryption derives the
		// same zero vector.
		zeroize.Float64s(u)
		return u, nil
	}
	floats.Scale(x/norm, u)
	return u, nil
}
