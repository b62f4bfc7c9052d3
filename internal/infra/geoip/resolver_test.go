package geoip

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestNewResolverEmptyPath(t *testing.T) {
	r, err := NewResolver("  ")
	if err != nil || r != nil {
		t.Fatalf("NewResolver(\"\") = %v, %v; want nil, nil", r, err)
	}
}

func TestNewResolverMissingFile(t *testing.T) {
	if _, err := NewResolver(filepath.Join(t.TempDir(), "missing.mmdb")); err == nil {
		t.Fatal("expected error for missing database")
	}
}

func TestCountryCodeWithoutDatabase(t *testing.T) {
	var r *Resolver
	if code, err := r.CountryCode("127.0.0.1"); err != nil || code != "" {
		t.Fatalf("loopback = %q, %v", code, err)
	}
	if code, err := r.CountryCode("10.1.2.3"); err != nil || code != "" {
		t.Fatalf("private = %q, %v", code, err)
	}
	if _, err := r.CountryCode("203.0.113.4"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("public ip error = %v, want ErrUnavailable", err)
	}
	if _, err := r.CountryCode("not-an-ip"); err == nil {
		t.Fatal("expected invalid ip error")
	}
}
