// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package minidump

import (
	"strings"
	"testing"
)

const sampleTraceback = `panic: boom

goroutine 1 [running]:
main.crash(...)
	/src/main.go:10
main.main()
	/src/main.go:5 +0x25

goroutine 18 [chan receive, 2 minutes]:
main.worker(0xc000010000)
	/src/worker.go:30 +0x4a
created by main.main in goroutine 1
	/src/main.go:4 +0x1b
`

func TestParseGoroutines(t *testing.T) {
	list := ParseGoroutines([]byte(sampleTraceback))

	if len(list.Goroutines) != 2 {
		t.Fatalf("got %d goroutines, want 2", len(list.Goroutines))
	}

	tests := []struct {
		id     int64
		state  string
		prefix string
	}{
		{1, "running", "main.crash(...)"},
		{18, "chan receive, 2 minutes", "main.worker(0xc000010000)"},
	}
	for i, tt := range tests {
		g := list.Goroutines[i]
		if g.ID != tt.id {
			t.Errorf("goroutine %d: ID = %d, want %d", i, g.ID, tt.id)
		}
		if g.State != tt.state {
			t.Errorf("goroutine %d: State = %q, want %q", i, g.State, tt.state)
		}
		if !strings.HasPrefix(g.Frames, tt.prefix) {
			t.Errorf("goroutine %d: Frames = %q, want prefix %q", i, g.Frames, tt.prefix)
		}
		if strings.HasSuffix(g.Frames, "\n") {
			t.Errorf("goroutine %d: Frames has a trailing newline", i)
		}
	}

	if list.Unparsed != "panic: boom" {
		t.Errorf("Unparsed = %q, want %q", list.Unparsed, "panic: boom")
	}
}

func TestParseGoroutinesEmpty(t *testing.T) {
	list := ParseGoroutines(nil)
	if len(list.Goroutines) != 0 || list.Unparsed != "" {
		t.Errorf("ParseGoroutines(nil) = %+v, want empty", list)
	}
}
