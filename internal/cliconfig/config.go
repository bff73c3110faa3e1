// Package cliconfig loads scheme parameters for the command-line tool and the
// example programs.
package cliconfig

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vecsec/dcpe-go/pkg/dcpe"
	"github.com/vecsec/dcpe-go/pkg/dcpe/logging"
	"github.com/vecsec/dcpe-go/pkg/dcpe/prf"
	"github.com/vecsec/dcpe-go/pkg/dcpe/random"
)

// File is the on-disk scheme configuration. YAML and JSON are both accepted.
//
//	beta: 3
//	max_scale: 10000
//	algorithm: HMAC-SHA256
//	seed: 19
type File struct {
	Beta      float64 `yaml:"beta"`
	MaxScale  float64 `yaml:"max_scale"`
	Algorithm string  `yaml:"algorithm"`
	// Seed, when set, makes keys and nonces reproducible. Never set it
	// outside tests and demos.
	Seed *uint64 `yaml:"seed"`
}

// Default returns the parameters used when no file is given.
func Default() *File {
	return &File{Beta: 3, MaxScale: 10000}
}

// LoadConfig reads and parses a scheme configuration file. The path must not
// escape the working directory.
func LoadConfig(path string) (*File, error) {
	absPath, err := SecurePath(path)
	if err != nil {
		return nil, fmt.Errorf("secure path: %w", err)
	}
	data, err := os.ReadFile(absPath) // #nosec G304 -- absPath validated by SecurePath
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a configuration document. Unknown fields are rejected.
func Parse(data []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	cfg := Default()
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the parameters without touching the filesystem.
func (f *File) Validate() error {
	if f == nil {
		return errors.New("nil config")
	}
	if !(f.Beta > 0) {
		return fmt.Errorf("beta must be > 0, got %v", f.Beta)
	}
	if !(f.MaxScale > 0) {
		return fmt.Errorf("max_scale must be > 0, got %v", f.MaxScale)
	}
	if _, err := prf.ParseAlgorithm(f.Algorithm); err != nil {
		return fmt.Errorf("algorithm: %w", err)
	}
	return nil
}

// SchemeConfig converts f into a dcpe.Config. A configured seed selects a
// deterministic random source.
func (f *File) SchemeConfig(logger logging.Logger) (dcpe.Config, error) {
	if err := f.Validate(); err != nil {
		return dcpe.Config{}, err
	}
	alg, err := prf.ParseAlgorithm(f.Algorithm)
	if err != nil {
		return dcpe.Config{}, err
	}

	cfg := dcpe.Config{
		Beta:      f.Beta,
		MaxScale:  f.MaxScale,
		Algorithm: alg,
		Logger:    logger,
	}
	if f.Seed != nil {
		src, err := random.NewDeterministic(*f.Seed)
		if err != nil {
			return dcpe.Config{}, fmt.Errorf("seeded source: %w", err)
		}
		cfg.Random = src
	}
	return cfg, nil
}

// SecurePath validates that a file path doesn't escape the working directory.
func SecurePath(path string) (string, error) {
	clean := filepath.Clean(path)
	absPath, err := filepath.Abs(clean)
	if err != nil {
		return "", fmt.Errorf("absolute path: %w", err)
	}
	base, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	rel, err := filepath.Rel(base, absPath)
	if err != nil {
		return "", fmt.Errorf("relative path: %w", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("path %q escapes working directory", path)
	}
	return absPath, nil
}
