// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/crashwatch/lib/crashtrap"
	"github.com/bureau-foundation/crashwatch/lib/minidump"
)

func writeDump(t *testing.T) string {
	t.Helper()
	data, err := minidump.Build(&crashtrap.Context{
		Source:     crashtrap.SourceSignal,
		Reason:     "received signal SIGABRT",
		Signal:     "SIGABRT",
		Goroutines: []byte("goroutine 1 [running]:\nmain.main()\n\t/src/main.go:9 +0x20\n"),
		PID:        1234,
		Time:       time.Unix(1700000000, 0).UTC(),
	}, minidump.BuildOptions{Compression: minidump.CompressionZstd})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	path := filepath.Join(t.TempDir(), "crash.dmp")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestInspectSummary(t *testing.T) {
	var stdout bytes.Buffer
	if err := run([]string{"inspect", writeDump(t)}, &stdout); err != nil {
		t.Fatalf("inspect failed: %v", err)
	}

	output := stdout.String()
	for _, want := range []string{
		"crash_info",
		"thread_list",
		"digest",
		"reason: received signal SIGABRT",
		"signal: SIGABRT",
		"pid:    1234",
		"Goroutines (1):",
		"main.main()",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("summary does not contain %q:\n%s", want, output)
		}
	}
}

func TestInspectJSON(t *testing.T) {
	var stdout bytes.Buffer
	if err := run([]string{"inspect", "--json", writeDump(t)}, &stdout); err != nil {
		t.Fatalf("inspect --json failed: %v", err)
	}

	var output struct {
		CrashInfo struct {
			Reason string `json:"Reason"`
			PID    int    `json:"PID"`
		} `json:"crash_info"`
		SystemInfo struct {
			OS string `json:"OS"`
		} `json:"system_info"`
		Digest string `json:"digest"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &output); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, stdout.String())
	}
	if output.CrashInfo.Reason != "received signal SIGABRT" || output.CrashInfo.PID != 1234 {
		t.Errorf("crash_info = %+v", output.CrashInfo)
	}
	if output.SystemInfo.OS == "" {
		t.Error("system_info.OS is empty")
	}
	if len(output.Digest) != 64 {
		t.Errorf("digest = %q, want 64 hex digits", output.Digest)
	}
}

func TestInspectJSONUnknownStream(t *testing.T) {
	const annotations = minidump.StreamType(0x43570099)
	writer := minidump.NewWriter(minidump.CompressionNone)
	if err := writer.Add(annotations, map[string]any{"build": "nightly", "shard": 3}); err != nil {
		t.Fatal(err)
	}
	if err := writer.Add(minidump.StreamType(0x4357009a), map[int]string{1: "one"}); err != nil {
		t.Fatal(err)
	}
	data, err := writer.Bytes(time.Unix(1700000000, 0))
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "unknown.dmp")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	var stdout bytes.Buffer
	if err := run([]string{"inspect", "--json", path}, &stdout); err != nil {
		t.Fatalf("inspect --json failed: %v", err)
	}
	var output map[string]any
	if err := json.Unmarshal(stdout.Bytes(), &output); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, stdout.String())
	}

	generic, ok := output[annotations.String()].(map[string]any)
	if !ok {
		t.Fatalf("%s = %#v, want an object", annotations, output[annotations.String()])
	}
	if generic["build"] != "nightly" || generic["shard"] != float64(3) {
		t.Errorf("%s = %v", annotations, generic)
	}
	diagnostic, ok := output["stream(0x4357009a)"].(string)
	if !ok || !strings.Contains(diagnostic, `"one"`) {
		t.Errorf("stream(0x4357009a) = %#v, want diagnostic notation", output["stream(0x4357009a)"])
	}
}

func TestInspectErrors(t *testing.T) {
	notDump := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(notDump, []byte("hello"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no file", []string{"inspect"}, "exactly one dump file"},
		{"two files", []string{"inspect", "a", "b"}, "exactly one dump file"},
		{"not a dump", []string{"inspect", notDump}, "bad signature"},
		{"unknown flag", []string{"inspect", "--yaml", notDump}, "unknown flag"},
		{"unknown command", []string{"explode"}, "unknown command"},
		{"no command", nil, "missing command"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(tt.args, &bytes.Buffer{})
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("run(%q) error = %v, want it to contain %q", tt.args, err, tt.want)
			}
		})
	}
}

func TestVersion(t *testing.T) {
	var stdout bytes.Buffer
	if err := run([]string{"version"}, &stdout); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(stdout.String(), "crashwatch ") {
		t.Errorf("version output = %q", stdout.String())
	}
}
