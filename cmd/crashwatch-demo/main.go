// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// crashwatch-demo starts crash supervision, idles past the supervisor's
// stale timeout to show the heartbeat keeping it alive, then crashes
// the way --mode asks. The supervisor prints the first bytes of the
// dump it produced.
//
// Settings shared with the supervisor come from the file named by
// --config or CRASHWATCH_CONFIG. The supervisor is started with only
// its marker argument and reads the same file through the inherited
// environment.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/crashwatch/lib/config"
	"github.com/bureau-foundation/crashwatch/lib/process"
	"github.com/bureau-foundation/crashwatch/lib/watchdog"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		process.Fatal(err)
	}
}

type options struct {
	mode       string
	delay      time.Duration
	message    string
	configPath string
}

var modes = []string{"nil", "panic", "fatal", "unguarded", "abort", "none"}

func parseOptions(args []string) (options, error) {
	var opts options
	flagSet := pflag.NewFlagSet("crashwatch-demo", pflag.ContinueOnError)
	// The supervisor is started with the marker argument only; it is
	// not a demo flag.
	flagSet.ParseErrorsWhitelist.UnknownFlags = true
	flagSet.StringVar(&opts.mode, "mode", "nil", fmt.Sprintf("how to crash: %v", modes))
	flagSet.DurationVar(&opts.delay, "delay", -1, "idle time before crashing (default: stale timeout plus one second)")
	flagSet.StringVar(&opts.message, "message", "", "send this text to the supervisor before idling")
	flagSet.StringVar(&opts.configPath, "config", "", "YAML or JSONC settings file (default: $"+config.EnvironmentVariable+")")
	if err := flagSet.Parse(args); err != nil {
		return opts, err
	}

	for _, mode := range modes {
		if opts.mode == mode {
			return opts, nil
		}
	}
	return opts, fmt.Errorf("unknown --mode %q (want one of %v)", opts.mode, modes)
}

// loadConfig builds the watchdog configuration both processes use.
func loadConfig(opts options) (watchdog.Config, *slog.Logger, error) {
	if opts.configPath != "" {
		os.Setenv(config.EnvironmentVariable, opts.configPath)
	}
	file, err := config.Load()
	if err != nil {
		return watchdog.Config{}, nil, err
	}

	level := slog.LevelInfo
	if file != nil {
		if level, err = file.Level(); err != nil {
			return watchdog.Config{}, nil, err
		}
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := watchdog.DefaultConfig().ApplyFile(file)
	if err != nil {
		return watchdog.Config{}, nil, err
	}
	cfg.Logger = logger
	return cfg, logger, nil
}

// configure is loadConfig, except that a supervisor falls back to the
// defaults when the settings file cannot be loaded. A supervisor always
// exits 0, so it must not fail before Spawn.
func configure(opts options, supervisor bool) (watchdog.Config, *slog.Logger, error) {
	cfg, logger, err := loadConfig(opts)
	if err == nil || !supervisor {
		return cfg, logger, err
	}
	logger = slog.New(slog.NewJSONHandler(os.Stderr, nil))
	logger.Warn("crash supervisor using default settings", "error", err)
	cfg = watchdog.DefaultConfig()
	cfg.Logger = logger
	return cfg, logger, nil
}

func run(args []string) error {
	opts, err := parseOptions(args)
	if err != nil {
		return err
	}
	cfg, logger, err := configure(opts, watchdog.IsCrashReporterProcess())
	if err != nil {
		return err
	}

	cfg.OnMinidump = func(dump []byte, path string) {
		fmt.Printf("minidump %s: %d bytes, starts % x\n", path, len(dump), dump[:min(20, len(dump))])
	}
	cfg.OnMessage = func(kind uint32, payload []byte) {
		fmt.Printf("message %d: %q\n", kind, payload)
	}

	handle, err := watchdog.Spawn(cfg)
	if err != nil {
		return err
	}
	defer handle.Close()
	defer handle.Guard()

	logger.Info("crash supervisor running", "supervisor_pid", handle.SupervisorPID(), "mode", opts.mode)

	if opts.message != "" {
		if err := handle.SendMessage(1, []byte(opts.message)); err != nil {
			return fmt.Errorf("sending message: %w", err)
		}
	}

	delay := opts.delay
	if delay < 0 {
		delay = cfg.ServerStaleTimeout + time.Second
	}
	time.Sleep(delay)

	return crash(opts.mode)
}

func crash(mode string) error {
	switch mode {
	case "nil":
		var pointer *int
		fmt.Println(*pointer)
	case "panic":
		panic("crashwatch-demo: requested panic")
	case "fatal":
		fmt.Println(recurse(0))
	case "unguarded":
		go func() { panic("crashwatch-demo: panic on an unguarded goroutine") }()
		select {}
	case "abort":
		self, err := os.FindProcess(os.Getpid())
		if err != nil {
			return err
		}
		if err := self.Signal(syscall.SIGABRT); err != nil {
			return err
		}
		select {}
	}
	return nil
}

// recurse overflows the goroutine stack, which the runtime reports as
// a fatal error that no recover can catch.
func recurse(depth int) int {
	return recurse(depth+1) + 1
}
