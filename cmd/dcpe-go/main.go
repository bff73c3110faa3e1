// Command dcpe-go generates DCPE keys and encrypts, decrypts and evaluates
// vectors from the command line.
//
//	dcpe-go keygen -out key.pem
//	dcpe-go encrypt -key key.pem -vector 1,2,3
//	dcpe-go decrypt -key key.pem -vector <ciphertext> -nonce <base64>
//	dcpe-go evaluate -triples 1000 -dim 16
package main

import (
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/vecsec/dcpe-go/internal/cliconfig"
	"github.com/vecsec/dcpe-go/pkg/dcpe"
	"github.com/vecsec/dcpe-go/pkg/dcpe/logging"
	"github.com/vecsec/dcpe-go/pkg/dcpe/quality"
	"github.com/vecsec/dcpe-go/pkg/dcpe/random"
)

const usage = `usage: dcpe-go <command> [flags]

commands:
  version    print version information
  keygen     generate a secret key (PEM)
  encrypt    encrypt a comma-separated vector
  decrypt    decrypt a comma-separated vector
  evaluate   measure order preservation on random triples

run "dcpe-go <command> -h" for command flags`

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatalf("dcpe-go: %v", err)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprintln(stderr, usage)
		return flag.ErrHelp
	}

	switch args[0] {
	case "version":
		fmt.Fprintf(stdout, "dcpe-go %s (commit %s, noise %s)\n", dcpe.BuildVersion(), dcpe.Commit, dcpe.NoiseDerivation)
		return nil
	case "keygen":
		return runKeyGen(args[1:], stdout, stderr)
	case "encrypt":
		return runEncrypt(args[1:], stdout, stderr)
	case "decrypt":
		return runDecrypt(args[1:], stdout, stderr)
	case "evaluate":
		return runEvaluate(args[1:], stdout, stderr)
	case "help", "-h", "--help":
		fmt.Fprintln(stdout, usage)
		return nil
	default:
		fmt.Fprintln(stderr, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func newScheme(sf *schemeFlags, stderr io.Writer) (*dcpe.Scheme[float64], error) {
	file := &cliconfig.File{
		Beta:      sf.beta,
		MaxScale:  sf.maxScale,
		Algorithm: sf.algorithm,
	}
	if sf.config != "" {
		var err error
		if file, err = cliconfig.LoadConfig(sf.config); err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}
	if sf.seed.set {
		seed := sf.seed.seed
		file.Seed = &seed
	}

	level := slog.LevelInfo
	if sf.verbose {
		level = slog.LevelDebug
	}
	logger := logging.New(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := file.SchemeConfig(logger)
	if err != nil {
		return nil, err
	}
	if file.Seed != nil {
		log.Printf("warning: deterministic seed %d in use; keys and nonces are predictable", *file.Seed)
	}
	return dcpe.NewScheme[float64](cfg)
}

func readKey(path string) (*dcpe.SecretKey, error) {
	if path == "" {
		return nil, errors.New("-key is required")
	}
	abs, err := cliconfig.SecurePath(path)
	if err != nil {
		return nil, fmt.Errorf("secure path: %w", err)
	}
	data, err := os.ReadFile(abs) // #nosec G304 -- abs validated by SecurePath
	if err != nil {
		return nil, fmt.Errorf("read key: %w", err)
	}
	return dcpe.ParseSecretKeyPEM(data)
}

func runKeyGen(args []string, stdout, stderr io.Writer) error {
	var (
		sf      schemeFlags
		out     string
		hashKey string
		scale   float64
	)
	fs := newFlagSet("keygen", &sf)
	fs.SetOutput(stderr)
	fs.StringVar(&out, "out", "", "write the PEM key to this file instead of stdout")
	fs.StringVar(&hashKey, "hash-key", "", "base64 PRF key material (32 bytes); random when empty")
	fs.Float64Var(&scale, "scale", 0, "fixed scale factor; sampled when 0")
	if err := fs.Parse(args); err != nil {
		return err
	}

	scheme, err := newScheme(&sf, stderr)
	if err != nil {
		return err
	}

	var opts []dcpe.KeyOption
	if hashKey != "" {
		material, err := base64.StdEncoding.DecodeString(hashKey)
		if err != nil {
			return fmt.Errorf("decode -hash-key: %w", err)
		}
		opts = append(opts, dcpe.WithHashKey(material))
	}
	if scale != 0 {
		opts = append(opts, dcpe.WithScale(scale))
	}

	key, err := scheme.KeyGen(opts...)
	if err != nil {
		return err
	}
	defer key.Destroy()

	encoded, err := key.MarshalPEM()
	if err != nil {
		return err
	}
	if out == "" {
		_, err = stdout.Write(encoded)
		return err
	}
	abs, err := cliconfig.SecurePath(out)
	if err != nil {
		return fmt.Errorf("secure path: %w", err)
	}
	if err := os.WriteFile(abs, encoded, 0o600); err != nil {
		return fmt.Errorf("write key: %w", err)
	}
	log.Printf("key written to %s", out)
	return nil
}

func runEncrypt(args []string, stdout, stderr io.Writer) error {
	var (
		sf      schemeFlags
		keyPath string
		vector  vectorValue
	)
	fs := newFlagSet("encrypt", &sf)
	fs.SetOutput(stderr)
	fs.StringVar(&keyPath, "key", "", "PEM key file")
	fs.Var(&vector, "vector", "comma-separated plaintext vector")
	if err := fs.Parse(args); err != nil {
		return err
	}

	scheme, err := newScheme(&sf, stderr)
	if err != nil {
		return err
	}
	key, err := readKey(keyPath)
	if err != nil {
		return err
	}
	defer key.Destroy()

	ciphertext, nonce, err := scheme.Encrypt(key, vector.v)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "ciphertext: %s\nnonce: %s\n", formatVector(ciphertext), nonce)
	return nil
}

func runDecrypt(args []string, stdout, stderr io.Writer) error {
	var (
		sf      schemeFlags
		keyPath string
		vector  vectorValue
		nonce   string
	)
	fs := newFlagSet("decrypt", &sf)
	fs.SetOutput(stderr)
	fs.StringVar(&keyPath, "key", "", "PEM key file")
	fs.Var(&vector, "vector", "comma-separated ciphertext vector")
	fs.StringVar(&nonce, "nonce", "", "base64 nonce printed by encrypt")
	if err := fs.Parse(args); err != nil {
		return err
	}

	scheme, err := newScheme(&sf, stderr)
	if err != nil {
		return err
	}
	key, err := readKey(keyPath)
	if err != nil {
		return err
	}
	defer key.Destroy()

	n, err := dcpe.ParseNonce(nonce)
	if err != nil {
		return err
	}
	plaintext, err := scheme.Decrypt(key, vector.v, n)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "plaintext: %s\n", formatVector(plaintext))
	return nil
}

func runEvaluate(args []string, stdout, stderr io.Writer) error {
	var (
		sf      schemeFlags
		keyPath string
		triples int
		dim     int
		bound   float64
	)
	fs := newFlagSet("evaluate", &sf)
	fs.SetOutput(stderr)
	fs.StringVar(&keyPath, "key", "", "PEM key file; a fresh key when empty")
	fs.IntVar(&triples, "triples", 1000, "number of random triples")
	fs.IntVar(&dim, "dim", 16, "vector dimension")
	fs.Float64Var(&bound, "max", 100, "coordinate upper bound")
	if err := fs.Parse(args); err != nil {
		return err
	}

	scheme, err := newScheme(&sf, stderr)
	if err != nil {
		return err
	}

	var key *dcpe.SecretKey
	if keyPath != "" {
		key, err = readKey(keyPath)
	} else {
		key, err = scheme.KeyGen()
	}
	if err != nil {
		return err
	}
	defer key.Destroy()

	var src random.Source = random.Crypto
	if sf.seed.set {
		if src, err = random.NewDeterministic(sf.seed.seed + 1); err != nil {
			return err
		}
	}
	samples, err := quality.RandomTriples(src, triples, dim, bound)
	if err != nil {
		return err
	}

	report, err := quality.Evaluate(quality.KeyEncryptor(scheme, key), scheme.Beta(), samples)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, report)
	return nil
}
