package dcpe_test

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/constraints"

	"github.com/vecsec/dcpe-go/pkg/dcpe"
	"github.com/vecsec/dcpe-go/pkg/dcpe/logging"
	"github.com/vecsec/dcpe-go/pkg/dcpe/prf"
	"github.com/vecsec/dcpe-go/pkg/dcpe/random"
)

const (
	testSeed = 0x13
	beta     = 3.0
	maxScale = 10000.0
)

var dimensions = []int{1, 2, 3, 5, 10, 25, 50}

func newScheme[T constraints.Float](t testing.TB) *dcpe.Scheme[T] {
	t.Helper()
	src, err := random.NewDeterministic(testSeed)
	require.NoError(t, err)

	scheme, err := dcpe.NewScheme[T](dcpe.Config{
		Beta:     beta,
		MaxScale: maxScale,
		Random:   src,
		Logger:   logging.Discard(),
	})
	require.NoError(t, err)
	return scheme
}

// testRand feeds plaintext vectors; it is independent of the scheme's source.
func testRand() *rand.Rand {
	return rand.New(rand.NewPCG(testSeed, testSeed))
}

func randomVector[T constraints.Float](r *rand.Rand, d int, max float64) []T {
	v := make([]T, d)
	for i := range v {
		v[i] = T(r.Float64() * max)
	}
	return v
}

func TestEncryptDecrypt(t *testing.T) {
	t.Run("float32", func(t *testing.T) { testEncryptDecrypt[float32](t, 1e-3) })
	t.Run("float64", func(t *testing.T) { testEncryptDecrypt[float64](t, 1e-9) })
}

func testEncryptDecrypt[T constraints.Float](t *testing.T, tolerance float64) {
	const runs = 10

	scheme := newScheme[T](t)
	r := testRand()

	for _, d := range dimensions {
		for run := 0; run < runs; run++ {
			key, err := scheme.KeyGen()
			require.NoError(t, err)

			message := randomVector[T](r, d, 1)

			ciphertext, nonce, err := scheme.Encrypt(key, message)
			require.NoError(t, err)
			require.Len(t, ciphertext, d)
			require.Len(t, nonce, dcpe.NonceSize)

			decrypted, err := scheme.Decrypt(key, ciphertext, nonce)
			require.NoError(t, err)
			require.Len(t, decrypted, d)

			for i := range message {
				require.InDelta(t, float64(message[i]), float64(decrypted[i]), tolerance, "d=%d run=%d i=%d", d, run, i)
			}
			key.Destroy()
		}
	}
}

func TestEncryptAddsBoundedNoise(t *testing.T) {
	scheme := newScheme[float64](t)
	r := testRand()

	for _, d := range dimensions {
		key, err := scheme.KeyGen()
		require.NoError(t, err)

		message := randomVector[float64](r, d, 100)
		scaled := make([]float64, d)
		for i, m := range message {
			scaled[i] = m * key.Scale()
		}

		ciphertext, _, err := scheme.Encrypt(key, message)
		require.NoError(t, err)

		offset, err := dcpe.Distance(ciphertext, scaled)
		require.NoError(t, err)
		require.LessOrEqual(t, offset, key.Scale()*beta/4*(1+1e-12))
		require.NotEqual(t, scaled, ciphertext)
	}
}

func TestEncryptFreshNonce(t *testing.T) {
	scheme := newScheme[float64](t)
	key, err := scheme.KeyGen()
	require.NoError(t, err)

	message := []float64{1, 2, 3}
	c1, n1, err := scheme.Encrypt(key, message)
	require.NoError(t, err)
	c2, n2, err := scheme.Encrypt(key, message)
	require.NoError(t, err)

	require.False(t, bytes.Equal(n1, n2))
	require.NotEqual(t, c1, c2)
}

func TestEncryptToDecryptTo(t *testing.T) {
	scheme := newScheme[float64](t)
	key, err := scheme.KeyGen()
	require.NoError(t, err)

	message := []float64{4, 8, 15, 16, 23, 42}

	t.Run("matches allocating API", func(t *testing.T) {
		ciphertext := make([]float64, len(message))
		nonce, err := scheme.EncryptTo(ciphertext, key, message)
		require.NoError(t, err)

		viaAlloc, err := scheme.Decrypt(key, ciphertext, nonce)
		require.NoError(t, err)

		viaBuffer := make([]float64, len(message))
		require.NoError(t, scheme.DecryptTo(viaBuffer, key, ciphertext, nonce))
		require.Equal(t, viaAlloc, viaBuffer)
		require.InDeltaSlice(t, message, viaBuffer, 1e-9)
	})

	t.Run("in place", func(t *testing.T) {
		buf := append([]float64(nil), message...)
		nonce, err := scheme.EncryptTo(buf, key, buf)
		require.NoError(t, err)
		require.NoError(t, scheme.DecryptTo(buf, key, buf, nonce))
		require.InDeltaSlice(t, message, buf, 1e-9)
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		_, err := scheme.EncryptTo(make([]float64, 2), key, message)
		require.ErrorIs(t, err, dcpe.ErrDimensionMismatch)

		err = scheme.DecryptTo(make([]float64, 7), key, message, make(dcpe.Nonce, dcpe.NonceSize))
		require.ErrorIs(t, err, dcpe.ErrDimensionMismatch)
	})
}

func TestEmptyVector(t *testing.T) {
	scheme := newScheme[float64](t)
	key, err := scheme.KeyGen()
	require.NoError(t, err)

	ciphertext, nonce, err := scheme.Encrypt(key, nil)
	require.NoError(t, err)
	require.Empty(t, ciphertext)
	require.Len(t, nonce, dcpe.NonceSize)

	plaintext, err := scheme.Decrypt(key, ciphertext, nonce)
	require.NoError(t, err)
	require.Empty(t, plaintext)
}

func TestKeyGen(t *testing.T) {
	scheme := newScheme[float64](t)

	t.Run("keys are unique", func(t *testing.T) {
		a, err := scheme.KeyGen()
		require.NoError(t, err)
		b, err := scheme.KeyGen()
		require.NoError(t, err)

		require.NotEqual(t, a.PRFKey().Bytes(), b.PRFKey().Bytes())
		require.NotEqual(t, a.Scale(), b.Scale())
		require.Equal(t, prf.HMACSHA256, a.Algorithm())
	})

	t.Run("scale within bounds", func(t *testing.T) {
		for i := 0; i < 1000; i++ {
			key, err := scheme.KeyGen()
			require.NoError(t, err)
			require.Greater(t, key.Scale(), 0.0)
			require.LessOrEqual(t, key.Scale(), maxScale)
		}
	})

	t.Run("fixed hash key and scale are reproducible", func(t *testing.T) {
		hashKey := bytes.Repeat([]byte{0x42}, prf.DigestSize)

		a, err := scheme.KeyGen(dcpe.WithHashKey(hashKey), dcpe.WithScale(123.5))
		require.NoError(t, err)
		b, err := scheme.KeyGen(dcpe.WithHashKey(hashKey), dcpe.WithScale(123.5))
		require.NoError(t, err)

		require.Equal(t, 123.5, a.Scale())
		require.Equal(t, a.Scale(), b.Scale())
		require.Equal(t, hashKey, a.PRFKey().Bytes())

		message := []float64{1, -1, 0.25}
		ciphertext, nonce, err := scheme.Encrypt(a, message)
		require.NoError(t, err)
		decrypted, err := scheme.Decrypt(b, ciphertext, nonce)
		require.NoError(t, err)
		require.InDeltaSlice(t, message, decrypted, 1e-9)
	})

	t.Run("wrong hash key size", func(t *testing.T) {
		for _, n := range []int{1, 31, 33, 64} {
			_, err := scheme.KeyGen(dcpe.WithHashKey(make([]byte, n)))
			require.ErrorIs(t, err, dcpe.ErrInvalidKeySize)
			require.ErrorIs(t, err, prf.ErrInvalidKeySize)

			var opErr *dcpe.Error
			require.True(t, errors.As(err, &opErr))
			require.Equal(t, "KeyGen", opErr.Op)
		}
	})

	t.Run("non-positive fixed scale", func(t *testing.T) {
		for _, s := range []float64{0, -1} {
			_, err := scheme.KeyGen(dcpe.WithScale(s))
			require.ErrorIs(t, err, dcpe.ErrInvalidConfiguration)
		}
	})
}

func TestSetMaxScale(t *testing.T) {
	scheme := newScheme[float64](t)

	err := scheme.SetMaxScale(-1)
	require.ErrorIs(t, err, dcpe.ErrInvalidConfiguration)
	require.ErrorIs(t, scheme.SetMaxScale(0), dcpe.ErrInvalidConfiguration)
	require.Equal(t, maxScale, scheme.MaxScale())

	require.NoError(t, scheme.SetMaxScale(5))
	require.Equal(t, 5.0, scheme.MaxScale())
	for i := 0; i < 100; i++ {
		key, err := scheme.KeyGen()
		require.NoError(t, err)
		require.LessOrEqual(t, key.Scale(), 5.0)
	}
}

func TestNewSchemeValidation(t *testing.T) {
	cases := []struct {
		name string
		cfg  dcpe.Config
		want error
	}{
		{"zero beta", dcpe.Config{Beta: 0, MaxScale: 1}, dcpe.ErrInvalidConfiguration},
		{"negative beta", dcpe.Config{Beta: -3, MaxScale: 1}, dcpe.ErrInvalidConfiguration},
		{"zero max scale", dcpe.Config{Beta: 1, MaxScale: 0}, dcpe.ErrInvalidConfiguration},
		{"negative max scale", dcpe.Config{Beta: 1, MaxScale: -1}, dcpe.ErrInvalidConfiguration},
		{"unknown algorithm", dcpe.Config{Beta: 1, MaxScale: 1, Algorithm: prf.Algorithm(9)}, prf.ErrUnsupportedAlgorithm},
		{"subnormal max scale", dcpe.Config{Beta: 1, MaxScale: math.SmallestNonzeroFloat64}, dcpe.ErrInvalidConfiguration},
		{"infinite max scale", dcpe.Config{Beta: 1, MaxScale: math.Inf(1)}, dcpe.ErrInvalidConfiguration},
		{"radius overflow", dcpe.Config{Beta: 1e200, MaxScale: 1e200}, dcpe.ErrInvalidConfiguration},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := dcpe.NewScheme[float64](tc.cfg)
			require.ErrorIs(t, err, tc.want)
		})
	}

	scheme, err := dcpe.NewScheme[float32](dcpe.Config{Beta: 1, MaxScale: 1})
	require.NoError(t, err)
	require.Equal(t, 1.0, scheme.Beta())
	require.Equal(t, prf.HMACSHA256, scheme.Algorithm())
}

func TestScaleExtremes(t *testing.T) {
	t.Run("smallest max scale yields positive scales", func(t *testing.T) {
		scheme, err := dcpe.NewScheme[float64](dcpe.Config{Beta: 1, MaxScale: 0x1p-1021, Logger: logging.Discard()})
		require.NoError(t, err)
		for i := 0; i < 200; i++ {
			key, err := scheme.KeyGen()
			require.NoError(t, err)
			require.Greater(t, key.Scale(), 0.0)
		}
	})

	t.Run("overflowing radius is rejected", func(t *testing.T) {
		scheme, err := dcpe.NewScheme[float64](dcpe.Config{Beta: 1e200, MaxScale: 1, Logger: logging.Discard()})
		require.NoError(t, err)

		_, err = scheme.KeyGen(dcpe.WithScale(1e200))
		require.ErrorIs(t, err, dcpe.ErrInvalidConfiguration)

		require.ErrorIs(t, scheme.SetMaxScale(1e200), dcpe.ErrInvalidConfiguration)
		require.ErrorIs(t, scheme.SetMaxScale(math.SmallestNonzeroFloat64), dcpe.ErrInvalidConfiguration)
		require.Equal(t, 1.0, scheme.MaxScale())

		key, err := scheme.KeyGen(dcpe.WithScale(1e100))
		require.NoError(t, err)
		message := []float64{1, 2}
		ciphertext, nonce, err := scheme.Encrypt(key, message)
		require.NoError(t, err)
		for _, c := range ciphertext {
			require.False(t, math.IsInf(c, 0))
		}
		decrypted, err := scheme.Decrypt(key, ciphertext, nonce)
		require.NoError(t, err)
		for _, m := range decrypted {
			require.False(t, math.IsNaN(m))
		}
	})
}

func TestNoIntegrityCheck(t *testing.T) {
	scheme := newScheme[float64](t)
	key, err := scheme.KeyGen()
	require.NoError(t, err)
	other, err := scheme.KeyGen()
	require.NoError(t, err)

	message := []float64{10, 20, 30, 40}
	ciphertext, nonce, err := scheme.Encrypt(key, message)
	require.NoError(t, err)

	t.Run("wrong key", func(t *testing.T) {
		got, err := scheme.Decrypt(other, ciphertext, nonce)
		require.NoError(t, err)
		require.NotEqual(t, message, got)
	})

	t.Run("tampered nonce", func(t *testing.T) {
		tampered := append(dcpe.Nonce(nil), nonce...)
		tampered[0] ^= 1
		got, err := scheme.Decrypt(key, ciphertext, tampered)
		require.NoError(t, err)
		require.NotEqual(t, message, got)
	})

	t.Run("truncated nonce", func(t *testing.T) {
		got, err := scheme.Decrypt(key, ciphertext, nonce[:4])
		require.NoError(t, err)
		require.Len(t, got, len(message))
	})

	t.Run("tampered ciphertext", func(t *testing.T) {
		tampered := append([]float64(nil), ciphertext...)
		tampered[2] += key.Scale()
		got, err := scheme.Decrypt(key, tampered, nonce)
		require.NoError(t, err)
		assert.InDelta(t, message[2]+1, got[2], 1e-9)
	})
}

func TestDestroyedKey(t *testing.T) {
	scheme := newScheme[float64](t)
	key, err := scheme.KeyGen()
	require.NoError(t, err)

	ciphertext, nonce, err := scheme.Encrypt(key, []float64{1})
	require.NoError(t, err)

	key.Destroy()
	key.Destroy()

	_, _, err = scheme.Encrypt(key, []float64{1})
	require.ErrorIs(t, err, dcpe.ErrInvalidKey)
	_, err = scheme.Decrypt(key, ciphertext, nonce)
	require.ErrorIs(t, err, dcpe.ErrInvalidKey)
	_, _, err = scheme.Encrypt(nil, []float64{1})
	require.ErrorIs(t, err, dcpe.ErrInvalidKey)
}

func TestAlgorithms(t *testing.T) {
	for _, alg := range []prf.Algorithm{prf.HMACSHA256, prf.HMACSHA3_256, prf.BLAKE2b256, prf.BLAKE3} {
		t.Run(alg.String(), func(t *testing.T) {
			scheme, err := dcpe.NewScheme[float64](dcpe.Config{
				Beta:      beta,
				MaxScale:  maxScale,
				Algorithm: alg,
				Logger:    logging.Discard(),
			})
			require.NoError(t, err)

			key, err := scheme.KeyGen()
			require.NoError(t, err)
			require.Equal(t, alg, key.Algorithm())

			message := randomVector[float64](testRand(), 16, 1)
			ciphertext, nonce, err := scheme.Encrypt(key, message)
			require.NoError(t, err)
			decrypted, err := scheme.Decrypt(key, ciphertext, nonce)
			require.NoError(t, err)
			require.InDeltaSlice(t, message, decrypted, 1e-9)
		})
	}
}

func TestOrderPreservation(t *testing.T) {
	const (
		keys    = 20
		triples = 200
		d       = 5
	)
	scheme := newScheme[float64](t)
	r := testRand()

	var eligible, preserved int
	for k := 0; k < keys; k++ {
		key, err := scheme.KeyGen()
		require.NoError(t, err)

		for i := 0; i < triples; i++ {
			x := randomVector[float64](r, d, 100)
			y := randomVector[float64](r, d, 100)
			z := randomVector[float64](r, d, 100)

			dxy, err := dcpe.Distance(x, y)
			require.NoError(t, err)
			dyz, err := dcpe.Distance(y, z)
			require.NoError(t, err)
			if !(dxy < dyz-beta) {
				continue
			}
			eligible++

			ex, _, err := scheme.Encrypt(key, x)
			require.NoError(t, err)
			ey, _, err := scheme.Encrypt(key, y)
			require.NoError(t, err)
			ez, _, err := scheme.Encrypt(key, z)
			require.NoError(t, err)

			exy, err := dcpe.Distance(ex, ey)
			require.NoError(t, err)
			eyz, err := dcpe.Distance(ey, ez)
			require.NoError(t, err)
			if exy < eyz {
				preserved++
			}
		}
	}

	require.Greater(t, eligible, keys*triples/10)
	require.GreaterOrEqual(t, float64(preserved)/float64(eligible), 0.99)
}

func TestConcurrentUse(t *testing.T) {
	scheme, err := dcpe.NewScheme[float64](dcpe.Config{Beta: beta, MaxScale: maxScale, Logger: logging.Discard()})
	require.NoError(t, err)
	key, err := scheme.KeyGen()
	require.NoError(t, err)

	const goroutines = 8
	var wg sync.WaitGroup
	failures := make(chan error, goroutines)

	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			message := []float64{float64(id), float64(id) * 2, -1}
			for i := 0; i < 100; i++ {
				ciphertext, nonce, err := scheme.Encrypt(key, message)
				if err != nil {
					failures <- err
					return
				}
				got, err := scheme.Decrypt(key, ciphertext, nonce)
				if err != nil {
					failures <- err
					return
				}
				for j := range message {
					if d := got[j] - message[j]; d > 1e-9 || d < -1e-9 {
						failures <- errors.New("round trip mismatch under concurrency")
						return
					}
				}
			}
		}(g)
	}
	wg.Wait()
	close(failures)
	for err := range failures {
		t.Fatal(err)
	}
}

func TestNonceString(t *testing.T) {
	nonce := dcpe.Nonce(bytes.Repeat([]byte{0xfe}, dcpe.NonceSize))
	parsed, err := dcpe.ParseNonce(nonce.String())
	require.NoError(t, err)
	require.Equal(t, nonce, parsed)

	_, err = dcpe.ParseNonce("not base64!")
	require.Error(t, err)
}

func TestKeyGenLogsRedacted(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	scheme, err := dcpe.NewScheme[float64](dcpe.Config{
		Beta:     beta,
		MaxScale: maxScale,
		Logger:   logging.New(slog.New(handler)),
	})
	require.NoError(t, err)

	hashKey := bytes.Repeat([]byte{'Z'}, prf.DigestSize)
	_, err = scheme.KeyGen(dcpe.WithHashKey(hashKey), dcpe.WithScale(123.456))
	require.NoError(t, err)

	out := buf.String()
	require.Contains(t, out, "key generated")
	require.Contains(t, out, "prf_key="+logging.Placeholder())
	require.Contains(t, out, "scale="+logging.Placeholder())
	require.NotContains(t, out, "ZZZZ")
	require.NotContains(t, out, "123.456")
}
