package dcpe

// Populated at build time via ldflags:
//
//	go build -ldflags "-X github.com/vecsec/dcpe-go/pkg/dcpe.Version=v1.2.3"
var (
	Version = "v0.0.0-in-progress"
	Commit  = "unknown"
)

// NoiseDerivation names the nonce-to-noise derivation. Ciphertexts are only
// decryptable by builds reporting the same value.
const NoiseDerivation = "tape-le64/chacha8/v1"

// BuildVersion returns the library version, in development
// v0.0.0-in-progress.
func BuildVersion() string {
	return Version
}
