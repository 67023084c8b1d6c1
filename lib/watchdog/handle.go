// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package watchdog

import (
	"log/slog"
	"sync"

	"github.com/bureau-foundation/crashwatch/lib/crashtrap"
	"github.com/bureau-foundation/crashwatch/lib/ipc"
)

// Handle is the application's link to its supervisor. Its methods are
// safe for concurrent use.
type Handle struct {
	name          string
	client        *ipc.Client
	supervisorPID int
	logger        *slog.Logger

	trap      *crashtrap.Trap
	heartbeat *heartbeat

	closeOnce sync.Once
	closeErr  error
}

// SendMessage delivers an application message to Config.OnMessage in
// the supervisor. The payload is sent as one frame.
func (h *Handle) SendMessage(kind uint32, payload []byte) error {
	return h.client.SendMessage(kind, payload)
}

// Guard reports a panic in progress to the supervisor. It must be
// deferred directly by the goroutine it protects:
//
//	defer handle.Guard()
//
// If the supervisor acknowledges the dump, the process exits with
// status 2; otherwise the panic continues.
func (h *Handle) Guard() {
	if value := recover(); value != nil {
		h.trap.HandlePanic(value)
	}
}

// Go runs fn on a new goroutine protected by Guard.
func (h *Handle) Go(fn func()) {
	go func() {
		defer h.Guard()
		fn()
	}()
}

// ChannelName is the name of the socket shared with the supervisor.
func (h *Handle) ChannelName() string { return h.name }

// SupervisorPID is the supervisor's process id.
func (h *Handle) SupervisorPID() int { return h.supervisorPID }

// Close stops supervision: the trap is detached, the connection closed
// and the heartbeat joined. The supervisor sees the disconnect and
// exits. Safe to call more than once.
func (h *Handle) Close() error {
	h.closeOnce.Do(func() {
		h.trap.Detach()
		h.closeErr = h.client.Close()
		h.heartbeat.Stop()
	})
	return h.closeErr
}

// onCrash is the trap handler: one ping, then one dump request. Both
// are bounded by ipc.AckTimeout. The ping result does not matter; it
// only refreshes the supervisor's stale timer before the dump request.
func (h *Handle) onCrash(crash *crashtrap.Context) crashtrap.Result {
	_ = h.client.Ping()
	if err := h.client.RequestDump(crash); err != nil {
		h.logger.Error("crash supervisor did not write a dump", "reason", crash.Reason, "error", err)
		return crashtrap.Unhandled
	}
	return crashtrap.Handled
}
