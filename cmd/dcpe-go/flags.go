package main

import (
	"flag"
	"fmt"
	"strconv"
	"strings"
)

// vectorValue is a flag.Value holding a comma-separated float vector.
type vectorValue struct {
	v []float64
}

func (f *vectorValue) String() string {
	return formatVector(f.v)
}

func (f *vectorValue) Set(s string) error {
	v, err := parseVector(s)
	if err != nil {
		return err
	}
	f.v = v
	return nil
}

// seedValue is an optional uint64 flag; set reports whether it was given.
type seedValue struct {
	seed uint64
	set  bool
}

func (f *seedValue) String() string {
	if !f.set {
		return ""
	}
	return strconv.FormatUint(f.seed, 10)
}

func (f *seedValue) Set(s string) error {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid uint64 value %q", s)
	}
	f.seed = n
	f.set = true
	return nil
}

// schemeFlags are shared by every subcommand that builds a scheme.
type schemeFlags struct {
	config    string
	beta      float64
	maxScale  float64
	algorithm string
	seed      seedValue
	verbose   bool
}

func newFlagSet(name string, sf *schemeFlags) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	if sf != nil {
		fs.StringVar(&sf.config, "config", "", "scheme config file (YAML or JSON)")
		fs.Float64Var(&sf.beta, "beta", 3, "approximation factor β")
		fs.Float64Var(&sf.maxScale, "max-scale", 10000, "upper bound of sampled scale factors")
		fs.StringVar(&sf.algorithm, "algorithm", "", "PRF algorithm (default HMAC-SHA256)")
		fs.Var(&sf.seed, "seed", "deterministic seed for keys and nonces (testing only)")
		fs.BoolVar(&sf.verbose, "v", false, "debug logging")
	}
	return fs
}

func parseVector(s string) ([]float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return []float64{}, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, len(parts))
	for i, p := range parts {
		x, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = x
	}
	return out, nil
}

func formatVector(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.FormatFloat(x, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}
