// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package channel names the local socket shared by one monitored
// process and its supervisor.
//
// Every monitored instance gets its own name, derived from a random
// 128-bit UUID, so supervisors are never shared between concurrent
// instances of the same application. On Linux and Android the name
// lives in the abstract socket namespace and leaves nothing on disk.
// Elsewhere it is a path in the OS temporary directory so the OS can
// clean up stale socket files instead of littering the working
// directory.
package channel

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/google/uuid"
)

// prefix starts every channel name.
const prefix = "temp-socket-"

// New returns a fresh channel name.
func New() string {
	return Name(uuid.New())
}

// Name returns the channel name for id: "temp-socket-<32 hex digits>"
// on platforms with an abstract socket namespace, or that string
// joined onto os.TempDir() elsewhere.
func Name(id uuid.UUID) string {
	base := prefix + strings.ReplaceAll(id.String(), "-", "")
	if abstractNamespace() {
		return base
	}
	return filepath.Join(os.TempDir(), base)
}

// Address converts a channel name into the address passed to
// net.Dial and net.Listen with network "unix". Abstract names get the
// leading '@' that Go maps to a NUL-prefixed sun_path.
func Address(name string) string {
	if abstractNamespace() && !filepath.IsAbs(name) {
		return "@" + name
	}
	return name
}

// IsPath reports whether the channel is backed by a socket file that
// the listener must remove.
func IsPath(name string) bool {
	return !abstractNamespace() || filepath.IsAbs(name)
}

func abstractNamespace() bool {
	return runtime.GOOS == "linux" || runtime.GOOS == "android"
}
