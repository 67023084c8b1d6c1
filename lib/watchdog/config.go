// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package watchdog

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/bureau-foundation/crashwatch/lib/clock"
	"github.com/bureau-foundation/crashwatch/lib/config"
	"github.com/bureau-foundation/crashwatch/lib/minidump"
	"github.com/bureau-foundation/crashwatch/lib/role"
)

const (
	// DefaultServerStaleTimeout is how long a supervisor waits for the
	// application to connect or to send anything.
	DefaultServerStaleTimeout = 5000 * time.Millisecond

	// DefaultClientConnectTimeout is how long Spawn keeps retrying the
	// connection to the supervisor it launched.
	DefaultClientConnectTimeout = 3000 * time.Millisecond

	// DefaultServerArg is the marker argument selecting the supervisor
	// role.
	DefaultServerArg = role.DefaultMarker
)

// Config configures Spawn. Start from DefaultConfig and set fields;
// Spawn works on its own copy.
type Config struct {
	// CrashesDir is where dump files are written before being handed
	// to OnMinidump. Created if missing.
	CrashesDir string

	ServerStaleTimeout   time.Duration
	ClientConnectTimeout time.Duration

	// ServerArg is the marker argument. The application and its
	// supervisor are the same binary, so both must agree on it.
	ServerArg string

	// Compression applies to every dump stream.
	Compression minidump.Compression

	// InMemoryDump hands OnMinidump the bytes the supervisor wrote
	// instead of reading the file back.
	InMemoryDump bool

	// CaptureProcess adds /proc status, maps and command line of the
	// crashed process to each dump.
	CaptureProcess bool

	// OnMinidump runs in the supervisor for each dump. The file at
	// path is removed when it returns.
	OnMinidump func(dump []byte, path string)

	// OnMessage runs in the supervisor for each Handle.SendMessage.
	OnMessage func(kind uint32, payload []byte)

	Logger *slog.Logger

	clock clock.Clock
}

// DefaultConfig returns the default configuration. It has no
// callbacks; Spawn requires at least one.
func DefaultConfig() Config {
	return Config{
		CrashesDir:           filepath.Join(os.TempDir(), "Crashes"),
		ServerStaleTimeout:   DefaultServerStaleTimeout,
		ClientConnectTimeout: DefaultClientConnectTimeout,
		ServerArg:            DefaultServerArg,
		InMemoryDump:         true,
	}
}

// ApplyFile overrides c with every field set in file. A nil file
// leaves c unchanged.
func (c Config) ApplyFile(file *config.Config) (Config, error) {
	if file == nil {
		return c, nil
	}
	if file.CrashesDir != "" {
		c.CrashesDir = file.CrashesDir
	}
	if file.ServerStaleTimeout > 0 {
		c.ServerStaleTimeout = file.ServerStaleTimeout.Std()
	}
	if file.ClientConnectTimeout > 0 {
		c.ClientConnectTimeout = file.ClientConnectTimeout.Std()
	}
	if file.ServerArg != "" {
		c.ServerArg = file.ServerArg
	}
	if file.Compression != "" {
		compression, err := minidump.ParseCompression(file.Compression)
		if err != nil {
			return c, fmt.Errorf("compression: %w", err)
		}
		c.Compression = compression
	}
	if file.InMemoryDump != nil {
		c.InMemoryDump = *file.InMemoryDump
	}
	if file.CaptureProcess != nil {
		c.CaptureProcess = *file.CaptureProcess
	}
	return c, nil
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.CrashesDir == "" {
		c.CrashesDir = defaults.CrashesDir
	}
	if c.ServerStaleTimeout <= 0 {
		c.ServerStaleTimeout = defaults.ServerStaleTimeout
	}
	if c.ClientConnectTimeout <= 0 {
		c.ClientConnectTimeout = defaults.ClientConnectTimeout
	}
	if c.ServerArg == "" {
		c.ServerArg = defaults.ServerArg
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.clock == nil {
		c.clock = clock.Real()
	}
	return c
}

// IsCrashReporterProcess reports whether the current process was
// started as a supervisor with the default marker.
func IsCrashReporterProcess() bool {
	return role.IsSupervisor(os.Args[1:], DefaultServerArg)
}

// IsCrashReporterProcess reports whether the current process was
// started as a supervisor with c's marker.
func (c Config) IsCrashReporterProcess() bool {
	marker := c.ServerArg
	if marker == "" {
		marker = DefaultServerArg
	}
	return role.IsSupervisor(os.Args[1:], marker)
}

// crashOutputPath is where the application's runtime crash report is
// written. It depends on the channel name only so that both processes
// derive the same path from what they share.
func crashOutputPath(channelName string) string {
	return filepath.Join(os.TempDir(), filepath.Base(channelName)+".crash")
}
