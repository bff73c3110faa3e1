// Package prf provides the keyed pseudorandom function used by the DCPE
// scheme to bind noise derivation to a secret key.
//
// The default construction is HMAC-SHA-256. Keyed SHA3-256, BLAKE2b-256 and
// BLAKE3 are available through [Algorithm] for deployments that standardise on
// a different hash. Every algorithm has a 32-byte key and a 32-byte tag.
//
// # Keys
//
// [KeyGen] returns a [KeyPair]. The construction is symmetric, so the signing
// and verifying handles carry the same material, but each handle owns its own
// copy and can be destroyed independently:
//
//	pair, err := prf.KeyGen(prf.HMACSHA256, nil, random.Crypto)
//	defer pair.Destroy()
//
//	tag, err := prf.Sign(pair.Signing, msg)
//	ok := prf.Verify(pair.Verifying, msg, tag)
//
// # Security Considerations
//
//   - Tags are compared in constant time; never compare them with bytes.Equal.
//   - Destroy zeroes key material on a best-effort basis (see internal/zeroize).
//   - Key bytes must not be logged; use logging.Redacted.
package prf
