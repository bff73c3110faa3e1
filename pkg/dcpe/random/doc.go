// Package random is the randomness source of the DCPE scheme.
//
// Production code draws from the operating system CSPRNG through [Crypto].
// Tests and reproducible experiments use a [Deterministic] source, a keyed
// BLAKE2b XOF stream seeded with an explicit 64-bit value. The seed travels
// on the scheme configuration; there is no process-wide seed.
//
// The helpers [Bytes], [Uint64], [Uint64n] and [Float64] read from any
// [Source]:
//
//	nonce, err := random.Bytes(random.Crypto, 32)
//
//	src, _ := random.NewDeterministic(0x13)
//	n, err := random.Uint64n(src, 10000)
//
// These draws are NOT reproducible per seed the way the sampling package is;
// they consume the stream and advance it.
package random
