// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package validate

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidator_Accumulates(t *testing.T) {
	v := New()
	if !v.IsValid() || v.Err() != nil {
		t.Fatal("fresh validator must be valid")
	}

	v.Range("Port", 70000, 0, 65535)
	v.NotEmpty("Name", "  ")

	if v.IsValid() {
		t.Fatal("expected invalid")
	}
	err := v.Err()
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if len(verr.Errors()) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(verr.Errors()))
	}
	if !strings.Contains(err.Error(), "Port") || !strings.Contains(err.Error(), "; ") {
		t.Fatalf("unexpected message: %s", err)
	}

	// Err returns a snapshot
	v.AddError("Later", "added after Err", nil)
	if len(verr.Errors()) != 2 {
		t.Fatal("ValidationError must not observe later additions")
	}
}

func TestValidator_ListenAddr(t *testing.T) {
	tests := []struct {
		addr  string
		valid bool
	}{
		{":8080", true},
		{"127.0.0.1:0", true},
		{"[::1]:9000", true},
		{"", false},
		{"8080", false},
		{":http", false},
		{":70000", false},
	}
	for _, tt := range tests {
		v := New()
		v.ListenAddr("ListenAddr", tt.addr)
		if v.IsValid() != tt.valid {
			t.Errorf("ListenAddr(%q) valid=%v, want %v (%v)", tt.addr, v.IsValid(), tt.valid, v.Err())
		}
	}
}

func TestValidator_HostPort(t *testing.T) {
	for addr, valid := range map[string]bool{
		"localhost:6379": true,
		":6379":          false,
		"localhost":      false,
		"localhost:0":    false,
	} {
		v := New()
		v.HostPort("Redis.Addr", addr)
		if v.IsValid() != valid {
			t.Errorf("HostPort(%q) valid=%v, want %v", addr, v.IsValid(), valid)
		}
	}
}

func TestValidator_OneOfAndFloatRange(t *testing.T) {
	v := New()
	v.OneOf("Exporter", "GRPC", []string{"grpc", "http"})
	v.FloatRange("Sampling", 0.5, 0, 1)
	if !v.IsValid() {
		t.Fatalf("unexpected errors: %v", v.Err())
	}

	v.OneOf("Exporter", "kafka", []string{"grpc", "http"})
	v.FloatRange("Sampling", 1.5, 0, 1)
	if len(v.Errors()) != 2 {
		t.Fatalf("expected 2 errors, got %v", v.Errors())
	}
}

func TestValidator_File(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "cues.yaml")
	if err := os.WriteFile(file, []byte("overlays: []\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	v := New()
	v.File("CueSheet", file)
	if !v.IsValid() {
		t.Fatalf("unexpected errors: %v", v.Err())
	}

	for _, bad := range []string{"", dir, filepath.Join(dir, "missing.yaml"), "../cues.yaml"} {
		v := New()
		v.File("CueSheet", bad)
		if v.IsValid() {
			t.Errorf("File(%q) should be invalid", bad)
		}
	}
}
