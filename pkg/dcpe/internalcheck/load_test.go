package internalcheck

import (
	"testing"

	"golang.org/x/tools/go/packages"
)

// checkedPatterns are the packages subject to the policies.
var checkedPatterns = []string{
	"github.com/vecsec/dcpe-go/pkg/dcpe/...",
	"github.com/vecsec/dcpe-go/internal/...",
}

func loadPackages(t *testing.T, mode packages.LoadMode) []*packages.Package {
	t.Helper()

	pkgs, err := packages.Load(&packages.Config{Mode: mode}, checkedPatterns...)
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}
	if packages.PrintErrors(pkgs) > 0 {
		t.Fatalf("packages contain errors")
	}
	return pkgs
}
