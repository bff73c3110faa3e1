package random

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"

	"golang.org/x/crypto/blake2b"
)

var (
	// ErrInvalidLength indicates a negative byte count was requested.
	ErrInvalidLength = errors.New("random: invalid length")

	// ErrInvalidBound indicates a zero, negative or non-finite upper bound.
	ErrInvalidBound = errors.New("random: invalid bound")
)

// Source is a stream of random bytes.
type Source interface {
	io.Reader
}

type cryptoSource struct{}

func (cryptoSource) Read(p []byte) (int, error) {
	return rand.Read(p)
}

// Crypto reads from crypto/rand. It is safe for concurrent use.
var Crypto Source = cryptoSource{}

// Deterministic produces the same byte stream for the same seed. It hashes the
// seed into a BLAKE2b XOF and reads from it. Calls are serialized by a mutex,
// but concurrent readers will interleave the stream so the sequence observed
// by each goroutine is no longer reproducible.
type Deterministic struct {
	mu   sync.Mutex
	seed uint64
	xof  blake2b.XOF
}

// NewDeterministic returns a Deterministic source seeded with seed.
func NewDeterministic(seed uint64) (*Deterministic, error) {
	var key [8]byte
	binary.LittleEndian.PutUint64(key[:], seed)

	xof, err := blake2b.NewXOF(blake2b.OutputLengthUnknown, key[:])
	if err != nil {
		return nil, fmt.Errorf("random: init xof: %w", err)
	}
	return &Deterministic{seed: seed, xof: xof}, nil
}

// Read fills p from the stream.
func (d *Deterministic) Read(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.xof.Read(p)
}

// Reset rewinds the stream to its start.
func (d *Deterministic) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.xof.Reset()
}

// Seed returns the seed the source was created with.
func (d *Deterministic) Seed() uint64 {
	return d.seed
}

// Bytes returns n bytes read from src.
func Bytes(src Source, n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLength, n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(src, buf); err != nil {
		return nil, fmt.Errorf("random: read %d bytes: %w", n, err)
	}
	return buf, nil
}

// Uint64 returns a full-width value read little-endian from src.
func Uint64(src Source) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(src, buf[:]); err != nil {
		return 0, fmt.Errorf("random: read uint64: %w", err)
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

// Uint64n returns a value in [0, max) by reducing a full-width draw modulo
// max. When max is not a power of two the low residues are very slightly more
// likely; this is acceptable for scale sampling and tests but it is not a
// uniform sampler in the cryptographic sense.
func Uint64n(src Source, max uint64) (uint64, error) {
	if max == 0 {
		return 0, fmt.Errorf("%w: max must be > 0", ErrInvalidBound)
	}
	v, err := Uint64(src)
	if err != nil {
		return 0, err
	}
	return v % max, nil
}

// Float64 returns a value uniformly distributed in (0, max].
func Float64(src Source, max float64) (float64, error) {
	if !(max > 0) || math.IsInf(max, 0) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidBound, max)
	}
	v, err := Uint64(src)
	if err != nil {
		return 0, err
	}
	// 53 significant bits, shifted to (0, 1].
	f := float64(v>>11+1) / (1 << 53)
	return f * max, nil
}
