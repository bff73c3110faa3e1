// Package dcpe implements Distance-Comparison-Preserving Encryption for real
// vectors.
//
// A ciphertext is the plaintext multiplied by the key's scale factor s plus a
// noise vector drawn from the ball of radius s·β/4. The noise is derived from
// a keyed PRF of a fresh per-encryption nonce, so decryption recomputes it
// exactly and no noise is stored. For vectors x, y, z encrypted under the same
// key, whenever
//
//	dist(x, y) < dist(y, z) - β
//
// the ciphertexts satisfy dist(Enc(x), Enc(y)) < dist(Enc(y), Enc(z)). An
// external nearest-neighbour index can therefore run over ciphertexts.
//
// # Usage
//
//	scheme, err := dcpe.NewScheme[float64](dcpe.Config{Beta: 3, MaxScale: 10000})
//	if err != nil {
//	    return err
//	}
//	key, err := scheme.KeyGen()
//	if err != nil {
//	    return err
//	}
//	defer key.Destroy()
//
//	ciphertext, nonce, err := scheme.Encrypt(key, []float64{0.5, 1.5, -2})
//	plaintext, err := scheme.Decrypt(key, ciphertext, nonce)
//
// EncryptTo and DecryptTo write into caller-provided buffers for bulk
// workloads; Encrypt and Decrypt are wrappers around them.
//
// # Security Considerations
//
//   - This is not authenticated encryption. A modified ciphertext or nonce, or
//     the wrong key, decrypts to wrong numbers without any error.
//   - Ciphertexts leak approximate distances by design; β trades accuracy of
//     the leaked ordering against concealment of individual values.
//   - Nonces are 32 random bytes per call; reusing one under the same key
//     reuses the noise.
//   - MarshalPEM writes key material in the clear and exists for debugging.
package dcpe
