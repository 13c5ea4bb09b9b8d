package provider_test

import (
	"strings"
	"testing"

	"db-mirror/internal/provider"
)

func TestRegistryLookup(t *testing.T) {
	opened := ""
	reg := provider.NewRegistry(map[string]provider.OpenFunc{
		"Postgres": func(dsn string) (provider.Session, error) {
			opened = dsn
			return nil, nil
		},
	})

	if _, err := reg.Open("postgres", "dsn://x"); err != nil {
		t.Fatalf("Expected case-insensitive engine lookup, got %v", err)
	}
	if opened != "dsn://x" {
		t.Errorf("Opener did not receive the DSN, got %q", opened)
	}
}

func TestRegistryUnknownEngine(t *testing.T) {
	reg := provider.NewRegistry(map[string]provider.OpenFunc{
		"mysql":    nil,
		"postgres": nil,
	})

	_, err := reg.Open("mongodb", "dsn://x")
	if err == nil {
		t.Fatal("Expected an error for an unknown engine")
	}
	if !strings.Contains(err.Error(), "mysql, postgres") {
		t.Errorf("Expected the known engines listed in the error, got %v", err)
	}
}
