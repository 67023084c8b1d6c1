// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package watchdog

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/bureau-foundation/crashwatch/lib/channel"
	"github.com/bureau-foundation/crashwatch/lib/crashtrap"
	"github.com/bureau-foundation/crashwatch/lib/ipc"
	"github.com/bureau-foundation/crashwatch/lib/process"
	"github.com/bureau-foundation/crashwatch/lib/role"
)

// ErrSupervisorExited is returned by Spawn in the supervisor role when
// process.Exit has been replaced and returned. In production the
// supervisor exits instead.
var ErrSupervisorExited = errors.New("watchdog: supervisor exited")

// Spawn starts crash supervision. In the application it launches the
// supervisor, connects, and installs the crash trap and heartbeat. In
// the supervisor (the marker argument is present) it serves the
// application until it crashes, disconnects or goes stale, then exits
// the process with status 0.
//
// Spawn panics if cfg has neither OnMinidump nor OnMessage.
func Spawn(cfg Config) (*Handle, error) {
	if cfg.OnMinidump == nil && cfg.OnMessage == nil {
		panic("watchdog: Spawn requires OnMinidump or OnMessage")
	}
	cfg = cfg.withDefaults()

	selected := role.Select(os.Args[1:], cfg.ServerArg)
	if selected.Kind == role.Supervisor {
		if err := supervise(context.Background(), cfg, selected.ChannelName, os.Getppid()); err != nil {
			cfg.Logger.Error("crash supervisor failed", "channel", selected.ChannelName, "error", err)
		}
		process.Exit(0)
		return nil, ErrSupervisorExited
	}

	return spawnMonitored(context.Background(), cfg)
}

func spawnMonitored(ctx context.Context, cfg Config) (*Handle, error) {
	name := channel.New()

	cmd, err := launchSupervisor(cfg.ServerArg, name)
	if err != nil {
		return nil, fmt.Errorf("launching crash supervisor: %w", err)
	}
	supervisorPID := cmd.Process.Pid
	go cmd.Wait()

	client, err := connect(ctx, name, cfg.ClientConnectTimeout, cfg.clock, ipc.Dial)
	if err != nil {
		return nil, err
	}

	if err := allowPtrace(supervisorPID); err != nil {
		cfg.Logger.Debug("could not allow supervisor to trace this process", "pid", supervisorPID, "error", err)
	}

	handle, err := newHandle(cfg, name, client, supervisorPID)
	if err != nil {
		client.Close()
		return nil, err
	}
	cfg.Logger.Debug("crash supervisor connected", "channel", name, "supervisor_pid", supervisorPID)
	return handle, nil
}

// newHandle attaches the crash trap and starts the heartbeat on an
// established connection.
func newHandle(cfg Config, name string, client *ipc.Client, supervisorPID int) (*Handle, error) {
	handle := &Handle{
		name:          name,
		client:        client,
		supervisorPID: supervisorPID,
		logger:        cfg.Logger,
	}

	trap, err := crashtrap.Attach(handle.onCrash, crashtrap.Options{
		CrashOutputPath: crashOutputPath(name),
		Signals:         true,
	})
	if err != nil {
		return nil, fmt.Errorf("installing crash trap: %w", err)
	}
	handle.trap = trap
	handle.heartbeat = startHeartbeat(client, cfg.ServerStaleTimeout/2, cfg.clock, cfg.Logger)
	return handle, nil
}
