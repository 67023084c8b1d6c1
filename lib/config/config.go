// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the configuration file read by Load.
const EnvironmentVariable = "CRASHWATCH_CONFIG"

// Config is the file form of the watchdog settings. Zero values mean
// the field was not set.
type Config struct {
	// CrashesDir is where the supervisor writes dump files.
	CrashesDir string `yaml:"crashes_dir" json:"crashes_dir"`

	// ServerStaleTimeout is how long the supervisor waits for a
	// connection or a frame before giving up.
	ServerStaleTimeout Duration `yaml:"server_stale_timeout" json:"server_stale_timeout"`

	// ClientConnectTimeout is how long the monitored process keeps
	// retrying the connection to a freshly launched supervisor.
	ClientConnectTimeout Duration `yaml:"client_connect_timeout" json:"client_connect_timeout"`

	// ServerArg is the command-line marker selecting the supervisor
	// role.
	ServerArg string `yaml:"server_arg" json:"server_arg"`

	// Compression is the dump stream compression: none, lz4 or zstd.
	Compression string `yaml:"compression" json:"compression"`

	// InMemoryDump keeps the dump bytes in memory for the callback
	// instead of reading the file back.
	InMemoryDump *bool `yaml:"in_memory_dump" json:"in_memory_dump"`

	// CaptureProcess adds /proc status, maps and command line of the
	// crashed process to each dump.
	CaptureProcess *bool `yaml:"capture_process" json:"capture_process"`

	// LogLevel is the minimum slog level of the binaries: debug, info,
	// warn or error.
	LogLevel string `yaml:"log_level" json:"log_level"`
}

// Duration is a time.Duration that decodes from "5s" or from an
// integer number of milliseconds.
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := parseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*d = parsed
	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(data []byte) error {
	text := string(data)
	if unquoted, err := strconv.Unquote(text); err == nil {
		text = unquoted
	}
	parsed, err := parseDuration(text)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func parseDuration(text string) (Duration, error) {
	text = strings.TrimSpace(text)
	if milliseconds, err := strconv.ParseInt(text, 10, 64); err == nil {
		return Duration(time.Duration(milliseconds) * time.Millisecond), nil
	}
	parsed, err := time.ParseDuration(text)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: want a Go duration or milliseconds", text)
	}
	return Duration(parsed), nil
}

// Load loads the file named by CRASHWATCH_CONFIG. It returns nil and
// no error when the variable is unset.
func Load() (*Config, error) {
	path := os.Getenv(EnvironmentVariable)
	if path == "" {
		return nil, nil
	}
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", EnvironmentVariable, err)
	}
	return cfg, nil
}

// LoadFile loads and validates the configuration file at path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case ".json", ".jsonc":
		decoder := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file extension %q (want .yaml, .yml, .json or .jsonc)", filepath.Ext(path))
	}

	cfg.expandVariables()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME":   os.Getenv("HOME"),
		"TMPDIR": os.TempDir(),
	}
	c.CrashesDir = expandVars(c.CrashesDir, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.ServerStaleTimeout < 0 {
		errs = append(errs, fmt.Errorf("server_stale_timeout must not be negative"))
	}
	if c.ClientConnectTimeout < 0 {
		errs = append(errs, fmt.Errorf("client_connect_timeout must not be negative"))
	}
	if c.ServerArg != "" && (!strings.HasPrefix(c.ServerArg, "-") || strings.Contains(c.ServerArg, "=")) {
		errs = append(errs, fmt.Errorf("server_arg %q must start with - and contain no =", c.ServerArg))
	}

	compressions := []string{"", "none", "lz4", "zstd"}
	if !contains(compressions, c.Compression) {
		errs = append(errs, fmt.Errorf("compression must be one of: %v", compressions[1:]))
	}

	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Level parses LogLevel. An empty LogLevel is slog.LevelInfo.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}

func contains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
