// Package internalcheck holds policy tests over the dcpe packages.
//
// The tests load the library with golang.org/x/tools/go/packages and walk its
// syntax trees. They reject byte-slice comparisons with == (key material and
// tags go through crypto/subtle), %x formatting that could print key bytes,
// and use of math/rand outside the seeded sampling package.
//
// # Internal Use Only
//
// The package has no API. It exists so that `go test ./...` enforces the
// policies above.
package internalcheck
