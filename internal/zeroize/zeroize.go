// Package zeroize wipes sensitive buffers such as PRF key material.
package zeroize

import "runtime"

// Bytes overwrites buf with zeros and keeps the slice alive until the stores
// have happened so the compiler cannot drop them (golang/go#33325).
//
// The Go garbage collector may still hold earlier copies of the data, so this
// is best effort: callers should avoid copying key material in the first
// place.
func Bytes(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
	runtime.KeepAlive(buf)
}

// Float64s overwrites buf with zeros. It is used for scratch noise buffers.
func Float64s(buf []float64) {
	for i := range buf {
		buf[i] = 0
	}
	runtime.KeepAlive(buf)
}
