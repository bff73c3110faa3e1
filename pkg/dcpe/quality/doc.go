// Package quality measures how well a DCPE key preserves distance
// comparisons. It draws random triples (x, y, z), keeps those whose plaintext
// gap dist(y, z) - dist(x, y) exceeds β, and counts how many keep
// dist(Enc(x), Enc(y)) < dist(Enc(y), Enc(z)) after encryption. The report
// also summarises the distortion ratio dist(Enc(a), Enc(b)) / dist(a, b),
// which concentrates around the key's scale factor.
package quality
