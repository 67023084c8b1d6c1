// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package watchdog

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/bureau-foundation/crashwatch/lib/crashtrap"
	"github.com/bureau-foundation/crashwatch/lib/ipc"
)

// dumpHandler is the supervisor's ipc.Handler. Every dump ends the
// loop, and so does a disconnect.
type dumpHandler struct {
	cfg             Config
	server          *ipc.Server
	crashOutputPath string
	monitoredPID    int
	logger          *slog.Logger
}

// CreateDumpFile creates <CrashesDir>/<uuid>.dmp.
func (h *dumpHandler) CreateDumpFile() (*os.File, string, error) {
	if err := os.MkdirAll(h.cfg.CrashesDir, 0o755); err != nil {
		return nil, "", fmt.Errorf("creating crashes directory: %w", err)
	}
	path := filepath.Join(h.cfg.CrashesDir, uuid.NewString()+".dmp")
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, "", err
	}
	return file, path, nil
}

// OnDumpCreated hands the dump to OnMinidump and removes the file.
// When the dump failed the callback is skipped.
func (h *dumpHandler) OnDumpCreated(binary *ipc.DumpBinary, err error) ipc.LoopAction {
	if binary != nil {
		defer h.remove(binary)
	}
	if err != nil {
		h.logger.Error("failed to write crash dump", "error", err)
		return ipc.Exit
	}

	contents := binary.Contents
	if contents == nil {
		if err := binary.File.Sync(); err != nil {
			h.logger.Warn("failed to flush crash dump", "path", binary.Path, "error", err)
		}
		contents, err = os.ReadFile(binary.Path)
		if err != nil {
			h.logger.Error("failed to read back crash dump", "path", binary.Path, "error", err)
			return ipc.Exit
		}
	}

	if h.cfg.OnMinidump != nil {
		h.cfg.OnMinidump(contents, binary.Path)
	}
	return ipc.Exit
}

// OnMessage forwards an application message verbatim.
func (h *dumpHandler) OnMessage(kind uint32, payload []byte) {
	if h.cfg.OnMessage != nil {
		h.cfg.OnMessage(kind, payload)
	}
}

// OnClientDisconnected turns a runtime crash report, if the
// application left one, into a dump before exiting.
func (h *dumpHandler) OnClientDisconnected(clientID int) ipc.LoopAction {
	crash, found, err := crashtrap.ReadCrashOutput(h.crashOutputPath, h.monitoredPID)
	if err != nil {
		h.logger.Warn("failed to read runtime crash output", "error", err)
		return ipc.Exit
	}
	if !found {
		h.logger.Debug("crash reporter client disconnected", "client", clientID)
		return ipc.Exit
	}

	h.logger.Info("application died of a runtime error", "pid", h.monitoredPID, "reason", crash.Reason)
	binary, err := h.server.WriteDump(h, crash)
	return h.OnDumpCreated(binary, err)
}

func (h *dumpHandler) remove(binary *ipc.DumpBinary) {
	if binary.File != nil {
		binary.File.Close()
	}
	if err := os.Remove(binary.Path); err != nil && !os.IsNotExist(err) {
		h.logger.Warn("failed to remove crash dump", "path", binary.Path, "error", err)
	}
}
