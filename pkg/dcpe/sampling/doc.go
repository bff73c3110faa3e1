// Package sampling draws reproducible pseudorandom values from a 64-bit seed.
//
// Every function here is a pure function of its parameters and seed: calling
// it twice with the same arguments returns bit-identical results. The DCPE
// scheme relies on this to recompute, during decryption, the exact noise that
// encryption added without storing it.
//
// The engine is a ChaCha8 generator from math/rand/v2 keyed by the seed, and
// the distributions come from gonum's stat/distuv package. Do not use these
// functions where fresh randomness is required; use package random instead.
package sampling
