// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bureau-foundation/crashwatch/lib/channel"
)

// SocketDir creates a temporary directory directly under /tmp and
// removes it when the test completes.
func SocketDir(t *testing.T) string {
	t.Helper()
	directory, err := os.MkdirTemp("/tmp", "crashwatch-test-*")
	if err != nil {
		t.Fatalf("creating socket directory: %v", err)
	}
	t.Cleanup(func() {
		_ = os.RemoveAll(directory)
	})
	return directory
}

// ChannelName returns a new channel name. On platforms where channel
// names are filesystem paths, the socket file is removed at cleanup.
func ChannelName(t *testing.T) string {
	t.Helper()
	name := channel.New()
	if filepath.IsAbs(name) {
		t.Cleanup(func() {
			_ = os.Remove(name)
		})
	}
	return name
}
