// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package channel

import (
	"path/filepath"
	"regexp"
	"runtime"
	"testing"

	"github.com/google/uuid"
)

var namePattern = regexp.MustCompile(`temp-socket-[0-9a-f]{32}$`)

func TestNameFormat(t *testing.T) {
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	name := Name(id)

	if !namePattern.MatchString(name) {
		t.Fatalf("Name = %q, want suffix matching %s", name, namePattern)
	}
	if filepath.Base(name) != "temp-socket-6ba7b8109dad11d180b400c04fd430c8" {
		t.Errorf("Name base = %q", filepath.Base(name))
	}

	abstract := runtime.GOOS == "linux" || runtime.GOOS == "android"
	if abstract && filepath.IsAbs(name) {
		t.Errorf("Name = %q, want a bare abstract name on %s", name, runtime.GOOS)
	}
	if !abstract && !filepath.IsAbs(name) {
		t.Errorf("Name = %q, want a temp-directory path on %s", name, runtime.GOOS)
	}
}

func TestNewIsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for range 1000 {
		name := New()
		if seen[name] {
			t.Fatalf("New returned %q twice", name)
		}
		seen[name] = true
	}
}

func TestAddress(t *testing.T) {
	name := New()
	address := Address(name)

	switch runtime.GOOS {
	case "linux", "android":
		if address != "@"+name {
			t.Errorf("Address(%q) = %q, want abstract %q", name, address, "@"+name)
		}
		if IsPath(name) {
			t.Errorf("IsPath(%q) = true, want false for an abstract name", name)
		}
	default:
		if address != name {
			t.Errorf("Address(%q) = %q, want the path unchanged", name, address)
		}
		if !IsPath(name) {
			t.Errorf("IsPath(%q) = false, want true", name)
		}
	}

	// Explicit paths are always used as-is.
	path := filepath.Join(t.TempDir(), "explicit.sock")
	if got := Address(path); got != path {
		t.Errorf("Address(%q) = %q, want unchanged", path, got)
	}
}
