// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package watchdog

import (
	"log/slog"
	"sync"
	"time"

	"github.com/bureau-foundation/crashwatch/lib/clock"
)

type pinger interface {
	Ping() error
}

// heartbeat pings the supervisor on a fixed interval so that it does
// not consider a quiet application stale. It stops on the first failed
// ping: a broken connection does not come back.
type heartbeat struct {
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func startHeartbeat(target pinger, interval time.Duration, clk clock.Clock, logger *slog.Logger) *heartbeat {
	h := &heartbeat{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go h.run(target, interval, clk, logger)
	return h
}

func (h *heartbeat) run(target pinger, interval time.Duration, clk clock.Clock, logger *slog.Logger) {
	defer close(h.done)
	for {
		select {
		case <-h.stop:
			return
		case <-clk.After(interval):
		}
		if err := target.Ping(); err != nil {
			logger.Debug("crash supervisor heartbeat stopped", "error", err)
			return
		}
	}
}

// Stop ends the heartbeat and waits for its goroutine. A ping in
// flight is allowed to finish.
func (h *heartbeat) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
	<-h.done
}
