package dcpe

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"

	"golang.org/x/exp/constraints"

	"github.com/vecsec/dcpe-go/internal/zeroize"
	"github.com/vecsec/dcpe-go/pkg/dcpe/logging"
	"github.com/vecsec/dcpe-go/pkg/dcpe/prf"
	"github.com/vecsec/dcpe-go/pkg/dcpe/random"
)

// NonceSize is the length of the nonces drawn by Encrypt.
const NonceSize = prf.DigestSize

// Nonce is the per-ciphertext random value. It is not secret but it is
// required, together with the key, to decrypt.
type Nonce []byte

// String returns the standard base64 encoding of the nonce.
func (n Nonce) String() string {
	return base64.StdEncoding.EncodeToString(n)
}

// ParseNonce decodes a nonce produced by Nonce.String.
func ParseNonce(s string) (Nonce, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("dcpe: parse nonce: %w", err)
	}
	return Nonce(b), nil
}

// Scheme encrypts vectors of T so that distance comparisons survive
// encryption. A Scheme is safe for concurrent use when its random source is.
type Scheme[T constraints.Float] struct {
	beta   float64
	alg    prf.Algorithm
	random random.Source
	log    logging.Logger

	mu       sync.RWMutex
	maxScale float64
}

// NewScheme validates cfg and returns a ready scheme.
func NewScheme[T constraints.Float](cfg Config) (*Scheme[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	return &Scheme[T]{
		beta:     cfg.Beta,
		alg:      cfg.Algorithm,
		random:   cfg.Random,
		log:      cfg.Logger.With("component", "dcpe"),
		maxScale: cfg.MaxScale,
	}, nil
}

// Beta returns the approximation factor β.
func (s *Scheme[T]) Beta() float64 {
	return s.beta
}

// Algorithm returns the PRF algorithm used for new keys.
func (s *Scheme[T]) Algorithm() prf.Algorithm {
	return s.alg
}

// MaxScale returns the current upper bound for sampled scale factors.
func (s *Scheme[T]) MaxScale() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.maxScale
}

// SetMaxScale changes the bound used by later KeyGen calls. Existing keys are
// unaffected.
func (s *Scheme[T]) SetMaxScale(maxScale float64) error {
	if err := checkMaxScale("SetMaxScale", maxScale, s.beta); err != nil {
		return err
	}
	s.mu.Lock()
	s.maxScale = maxScale
	s.mu.Unlock()

	s.log.Debug(context.Background(), "max scale updated", "max_scale", maxScale)
	return nil
}

// KeyGen creates a secret key. By default the PRF material is drawn from the
// scheme's random source and the scale is sampled uniformly from
// (0, MaxScale]; WithHashKey and WithScale fix either part.
func (s *Scheme[T]) KeyGen(opts ...KeyOption) (*SecretKey, error) {
	const op = "KeyGen"

	var o keyOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.fixed {
		if !positive(o.scale) {
			return nil, errorf(op, "%w: scale must be > 0, got %v", ErrInvalidConfiguration, o.scale)
		}
		if err := checkRadius(op, o.scale, s.beta); err != nil {
			return nil, err
		}
	}

	pair, err := prf.KeyGen(s.alg, o.hashKey, s.random)
	if err != nil {
		return nil, opError(op, err)
	}
	// Only the signing handle is needed to derive tapes.
	pair.Verifying.Destroy()

	scale := o.scale
	if !o.fixed {
		if scale, err = random.Float64(s.random, s.MaxScale()); err != nil {
			pair.Signing.Destroy()
			return nil, opError(op, err)
		}
		if !positive(scale) {
			pair.Signing.Destroy()
			return nil, errorf(op, "%w: sampled scale %v", ErrInvalidConfiguration, scale)
		}
	}

	s.log.Debug(context.Background(), "key generated",
		"algorithm", s.alg.String(),
		"fixed_hash_key", len(o.hashKey) > 0,
		"fixed_scale", o.fixed,
		logging.Redacted("prf_key"),
		logging.Redacted("scale"),
	)
	return &SecretKey{prf: pair.Signing, scale: scale}, nil
}

// Encrypt encrypts plaintext under key with a fresh nonce.
func (s *Scheme[T]) Encrypt(key *SecretKey, plaintext []T) ([]T, Nonce, error) {
	ciphertext := make([]T, len(plaintext))
	nonce, err := s.EncryptTo(ciphertext, key, plaintext)
	if err != nil {
		return nil, nil, err
	}
	return ciphertext, nonce, nil
}

// EncryptTo is Encrypt writing into dst, which must have the length of
// plaintext. dst may alias plaintext.
func (s *Scheme[T]) EncryptTo(dst []T, key *SecretKey, plaintext []T) (Nonce, error) {
	const op = "Encrypt"

	if !key.usable() {
		return nil, opError(op, ErrInvalidKey)
	}
	if len(dst) != len(plaintext) {
		return nil, errorf(op, "%w: dst has %d elements, plaintext %d", ErrDimensionMismatch, len(dst), len(plaintext))
	}

	nonce, err := random.Bytes(s.random, NonceSize)
	if err != nil {
		return nil, opError(op, err)
	}

	noise, err := noiseVector(key, s.beta, nonce, len(plaintext))
	if err != nil {
		return nil, opError(op, err)
	}
	defer zeroize.Float64s(noise)

	for i, m := range plaintext {
		dst[i] = T(float64(m)*key.scale + noise[i])
	}
	return Nonce(nonce), nil
}

// Decrypt recovers the plaintext of ciphertext. There is no integrity check:
// a wrong key, a modified ciphertext or a modified nonce yield a wrong
// plaintext, not an error.
func (s *Scheme[T]) Decrypt(key *SecretKey, ciphertext []T, nonce Nonce) ([]T, error) {
	plaintext := make([]T, len(ciphertext))
	if err := s.DecryptTo(plaintext, key, ciphertext, nonce); err != nil {
		return nil, err
	}
	return plaintext, nil
}

// DecryptTo is Decrypt writing into dst, which must have the length of
// ciphertext. dst may alias ciphertext.
func (s *Scheme[T]) DecryptTo(dst []T, key *SecretKey, ciphertext []T, nonce Nonce) error {
	const op = "Decrypt"

	if !key.usable() {
		return opError(op, ErrInvalidKey)
	}
	if len(dst) != len(ciphertext) {
		return errorf(op, "%w: dst has %d elements, ciphertext %d", ErrDimensionMismatch, len(dst), len(ciphertext))
	}

	noise, err := noiseVector(key, s.beta, nonce, len(ciphertext))
	if err != nil {
		return opError(op, err)
	}
	defer zeroize.Float64s(noise)

	for i, c := range ciphertext {
		dst[i] = T((float64(c) - noise[i]) / key.scale)
	}
	return nil
}
