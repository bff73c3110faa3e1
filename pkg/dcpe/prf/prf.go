package prf

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"hash"
	"strings"
	"sync"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"

	"github.com/vecsec/dcpe-go/internal/zeroize"
	"github.com/vecsec/dcpe-go/pkg/dcpe/random"
)

// DigestSize is the tag and key length, in bytes, of every Algorithm.
const DigestSize = 32

var (
	// ErrInvalidKeySize indicates a hash key whose length is neither zero nor
	// DigestSize.
	ErrInvalidKeySize = errors.New("prf: invalid key size")

	// ErrUnsupportedAlgorithm indicates an unknown Algorithm value.
	ErrUnsupportedAlgorithm = errors.New("prf: unsupported algorithm")

	// ErrKeyDestroyed indicates use of a key after Destroy.
	ErrKeyDestroyed = errors.New("prf: key destroyed")
)

// Algorithm selects the keyed hash.
type Algorithm int

const (
	// HMACSHA256 is HMAC over SHA-256 (RFC 2104). It is the default.
	HMACSHA256 Algorithm = iota
	// HMACSHA3_256 is HMAC over SHA3-256.
	HMACSHA3_256
	// BLAKE2b256 is BLAKE2b in keyed mode with a 32-byte output.
	BLAKE2b256
	// BLAKE3 is BLAKE3 in keyed mode.
	BLAKE3
)

var algorithmNames = map[Algorithm]string{
	HMACSHA256:   "HMAC-SHA256",
	HMACSHA3_256: "HMAC-SHA3-256",
	BLAKE2b256:   "BLAKE2b-256",
	BLAKE3:       "BLAKE3",
}

// String returns the canonical name of the algorithm.
func (a Algorithm) String() string {
	if name, ok := algorithmNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Algorithm(%d)", int(a))
}

// Valid reports whether a names a supported algorithm.
func (a Algorithm) Valid() bool {
	_, ok := algorithmNames[a]
	return ok
}

// ParseAlgorithm maps a canonical name (case-insensitive) back to its
// Algorithm. The empty string selects HMACSHA256.
func ParseAlgorithm(name string) (Algorithm, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return HMACSHA256, nil
	}
	for alg, n := range algorithmNames {
		if strings.EqualFold(n, name) {
			return alg, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, name)
}

// newHash returns a fresh keyed hash context. A context is never shared
// between calls, so Sign and Verify are safe for concurrent use.
func (a Algorithm) newHash(key []byte) (hash.Hash, error) {
	switch a {
	case HMACSHA256:
		return hmac.New(sha256.New, key), nil
	case HMACSHA3_256:
		return hmac.New(sha3.New256, key), nil
	case BLAKE2b256:
		return blake2b.New256(key)
	case BLAKE3:
		return blake3.NewKeyed(key)
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedAlgorithm, a)
	}
}

// Key is owned PRF key material tagged with its algorithm.
type Key struct {
	mu        sync.RWMutex
	alg       Algorithm
	material  []byte
	destroyed bool
}

// NewKey copies material into a new Key. The material must be DigestSize
// bytes long.
func NewKey(alg Algorithm, material []byte) (*Key, error) {
	if !alg.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedAlgorithm, alg)
	}
	if len(material) != DigestSize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidKeySize, len(material), DigestSize)
	}
	buf := make([]byte, DigestSize)
	copy(buf, material)
	return &Key{alg: alg, material: buf}, nil
}

// Algorithm returns the algorithm tag.
func (k *Key) Algorithm() Algorithm {
	return k.alg
}

// Bytes returns a copy of the key material, or nil once destroyed.
func (k *Key) Bytes() []byte {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if k.destroyed {
		return nil
	}
	out := make([]byte, len(k.material))
	copy(out, k.material)
	return out
}

// Destroyed reports whether Destroy has been called.
func (k *Key) Destroyed() bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.destroyed
}

// Destroy zeroes the key material. It is idempotent.
func (k *Key) Destroy() {
	if k == nil {
		return
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	zeroize.Bytes(k.material)
	k.material = nil
	k.destroyed = true
}

// KeyPair holds the signing and verifying handles of a symmetric PRF key.
type KeyPair struct {
	Signing   *Key
	Verifying *Key
}

// Destroy destroys both handles.
func (p KeyPair) Destroy() {
	p.Signing.Destroy()
	p.Verifying.Destroy()
}

// KeyGen creates a key pair for alg. An empty hashKey draws fresh material
// from src; otherwise hashKey must be exactly DigestSize bytes and is copied.
func KeyGen(alg Algorithm, hashKey []byte, src random.Source) (KeyPair, error) {
	if !alg.Valid() {
		return KeyPair{}, fmt.Errorf("%w: %v", ErrUnsupportedAlgorithm, alg)
	}

	material := hashKey
	if len(material) == 0 {
		if src == nil {
			src = random.Crypto
		}
		var err error
		if material, err = random.Bytes(src, DigestSize); err != nil {
			return KeyPair{}, fmt.Errorf("prf: draw key: %w", err)
		}
		defer zeroize.Bytes(material)
	} else if len(material) != DigestSize {
		return KeyPair{}, fmt.Errorf("%w: wrong hash key size %d, must be 0 or %d", ErrInvalidKeySize, len(material), DigestSize)
	}

	signing, err := NewKey(alg, material)
	if err != nil {
		return KeyPair{}, err
	}
	verifying, err := NewKey(alg, material)
	if err != nil {
		signing.Destroy()
		return KeyPair{}, err
	}
	return KeyPair{Signing: signing, Verifying: verifying}, nil
}

// Sign returns the tag of message under key.
func Sign(key *Key, message []byte) ([]byte, error) {
	if key == nil {
		return nil, errors.New("prf: nil key")
	}
	key.mu.RLock()
	defer key.mu.RUnlock()
	if key.destroyed {
		return nil, ErrKeyDestroyed
	}

	h, err := key.alg.newHash(key.material)
	if err != nil {
		return nil, err
	}
	h.Write(message)
	return h.Sum(nil), nil
}

// Verify reports whether tag is the tag of message under key. The comparison
// runs in constant time. Verify never fails loudly: a nil or destroyed key
// and a tag of the wrong length all report false.
func Verify(key *Key, message, tag []byte) bool {
	expected, err := Sign(key, message)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(expected, tag) == 1
}
