// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package watchdog

import (
	"context"
	"fmt"
	"os"

	"github.com/bureau-foundation/crashwatch/lib/ipc"
)

// supervise runs the supervisor role on channelName until its event
// loop stops. Only monitoredPID may connect.
func supervise(ctx context.Context, cfg Config, channelName string, monitoredPID int) error {
	logger := cfg.Logger.With("channel", channelName)
	crashOutput := crashOutputPath(channelName)
	defer os.Remove(crashOutput)

	server, err := ipc.Listen(channelName, ipc.ServerOptions{
		Logger:         cfg.Logger,
		Compression:    cfg.Compression,
		ExpectedPeer:   monitoredPID,
		KeepContents:   cfg.InMemoryDump,
		CaptureProcess: cfg.CaptureProcess,
	})
	if err != nil {
		return err
	}
	defer server.Close()

	handler := &dumpHandler{
		cfg:             cfg,
		server:          server,
		crashOutputPath: crashOutput,
		monitoredPID:    monitoredPID,
		logger:          logger,
	}
	reason, err := server.Run(ctx, handler, cfg.ServerStaleTimeout)
	if err != nil {
		return fmt.Errorf("serving %s: %w", channelName, err)
	}
	logger.Debug("crash supervisor exiting", "reason", reason)
	return nil
}
