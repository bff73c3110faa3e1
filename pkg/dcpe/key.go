package dcpe

import (
	"encoding/pem"
	"strconv"

	"github.com/vecsec/dcpe-go/internal/zeroize"
	"github.com/vecsec/dcpe-go/pkg/dcpe/prf"
)

// SecretKey is a DCPE key: a PRF key and a positive scale factor. It is
// immutable; Destroy wipes the PRF material and makes the key unusable.
type SecretKey struct {
	prf   *prf.Key
	scale float64
}

// NewSecretKey assembles a key from explicit parts. The material is copied.
func NewSecretKey(alg prf.Algorithm, material []byte, scale float64) (*SecretKey, error) {
	if !positive(scale) {
		return nil, errorf("NewSecretKey", "%w: scale must be > 0, got %v", ErrInvalidConfiguration, scale)
	}
	k, err := prf.NewKey(alg, material)
	if err != nil {
		return nil, opError("NewSecretKey", err)
	}
	return &SecretKey{prf: k, scale: scale}, nil
}

// Scale returns the scale factor s.
func (k *SecretKey) Scale() float64 {
	return k.scale
}

// Algorithm returns the PRF algorithm of the key.
func (k *SecretKey) Algorithm() prf.Algorithm {
	return k.prf.Algorithm()
}

// PRFKey returns the PRF handle. The handle is shared with the SecretKey;
// destroying it destroys the SecretKey.
func (k *SecretKey) PRFKey() *prf.Key {
	return k.prf
}

// Destroy zeroes the PRF material. It is idempotent.
func (k *SecretKey) Destroy() {
	if k == nil {
		return
	}
	k.prf.Destroy()
}

func (k *SecretKey) usable() bool {
	return k != nil && k.prf != nil && !k.prf.Destroyed() && positive(k.scale)
}

// KeyOption customises KeyGen.
type KeyOption func(*keyOptions)

type keyOptions struct {
	hashKey []byte
	scale   float64
	fixed   bool
}

// WithHashKey fixes the PRF key material. It must be prf.DigestSize bytes; an
// empty slice keeps the default of drawing fresh material.
func WithHashKey(hashKey []byte) KeyOption {
	return func(o *keyOptions) {
		o.hashKey = hashKey
	}
}

// WithScale fixes the scale factor instead of sampling it.
func WithScale(scale float64) KeyOption {
	return func(o *keyOptions) {
		o.scale = scale
		o.fixed = true
	}
}

const (
	pemBlockType   = "DCPE SECRET KEY"
	pemHeaderAlg   = "Algorithm"
	pemHeaderScale = "Scale"
)

// MarshalPEM exports the key as a PEM block. This is a debugging aid, not a
// storage format: the material is written unencrypted.
func (k *SecretKey) MarshalPEM() ([]byte, error) {
	if !k.usable() {
		return nil, opError("MarshalPEM", ErrInvalidKey)
	}
	material := k.prf.Bytes()
	defer zeroize.Bytes(material)

	block := &pem.Block{
		Type: pemBlockType,
		Headers: map[string]string{
			pemHeaderAlg:   k.Algorithm().String(),
			pemHeaderScale: strconv.FormatFloat(k.scale, 'g', -1, 64),
		},
		Bytes: material,
	}
	return pem.EncodeToMemory(block), nil
}

// ParseSecretKeyPEM reads a key written by MarshalPEM.
func ParseSecretKeyPEM(data []byte) (*SecretKey, error) {
	const op = "ParseSecretKeyPEM"

	block, _ := pem.Decode(data)
	if block == nil {
		return nil, errorf(op, "%w: no PEM block", ErrInvalidKeyEncoding)
	}
	defer zeroize.Bytes(block.Bytes)

	if block.Type != pemBlockType {
		return nil, errorf(op, "%w: unexpected block type %q", ErrInvalidKeyEncoding, block.Type)
	}
	alg, err := prf.ParseAlgorithm(block.Headers[pemHeaderAlg])
	if err != nil {
		return nil, errorf(op, "%w: %w", ErrInvalidKeyEncoding, err)
	}
	scale, err := strconv.ParseFloat(block.Headers[pemHeaderScale], 64)
	if err != nil {
		return nil, errorf(op, "%w: scale: %w", ErrInvalidKeyEncoding, err)
	}
	key, err := NewSecretKey(alg, block.Bytes, scale)
	if err != nil {
		return nil, errorf(op, "%w: %w", ErrInvalidKeyEncoding, err)
	}
	return key, nil
}
