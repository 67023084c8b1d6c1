// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package watchdog

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/bureau-foundation/crashwatch/lib/clock"
	"github.com/bureau-foundation/crashwatch/lib/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type recordingPinger struct {
	pings chan struct{}
	err   error
}

func newRecordingPinger(err error) *recordingPinger {
	return &recordingPinger{pings: make(chan struct{}, 16), err: err}
}

func (p *recordingPinger) Ping() error {
	p.pings <- struct{}{}
	return p.err
}

func TestHeartbeatPingsEveryInterval(t *testing.T) {
	clk := clock.Fake(time.Unix(0, 0))
	pinger := newRecordingPinger(nil)
	interval := DefaultServerStaleTimeout / 2

	h := startHeartbeat(pinger, interval, clk, discardLogger())
	for i := range 3 {
		clk.WaitForTimers(1)
		testutil.RequireNoReceive(t, pinger.pings, 10*time.Millisecond, "ping %d before its interval", i)
		clk.Advance(interval)
		testutil.RequireReceive(t, pinger.pings, 5*time.Second, "ping %d", i)
	}

	h.Stop()
	testutil.RequireClosed(t, h.done, time.Second, "heartbeat goroutine after Stop")
}

func TestHeartbeatStopsOnFailedPing(t *testing.T) {
	clk := clock.Fake(time.Unix(0, 0))
	pinger := newRecordingPinger(errors.New("broken pipe"))

	h := startHeartbeat(pinger, time.Second, clk, discardLogger())
	clk.WaitForTimers(1)
	clk.Advance(time.Second)

	testutil.RequireReceive(t, pinger.pings, 5*time.Second, "first ping")
	testutil.RequireClosed(t, h.done, 5*time.Second, "heartbeat goroutine after a failed ping")
	if pending := clk.PendingCount(); pending != 0 {
		t.Errorf("%d timers pending after the heartbeat stopped", pending)
	}

	h.Stop()
}

func TestHeartbeatStopBeforeFirstPing(t *testing.T) {
	clk := clock.Fake(time.Unix(0, 0))
	pinger := newRecordingPinger(nil)

	h := startHeartbeat(pinger, time.Second, clk, discardLogger())
	clk.WaitForTimers(1)
	h.Stop()
	h.Stop()

	clk.Advance(time.Second)
	testutil.RequireNoReceive(t, pinger.pings, 20*time.Millisecond, "ping after Stop")
}
