// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package watchdog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bureau-foundation/crashwatch/lib/clock"
	"github.com/bureau-foundation/crashwatch/lib/ipc"
)

// ErrConnectTimeout means the supervisor did not accept a connection
// within Config.ClientConnectTimeout.
var ErrConnectTimeout = errors.New("watchdog: timed out connecting to crash supervisor")

// connectPollInterval is the wait between connection attempts while
// the supervisor starts up.
const connectPollInterval = 50 * time.Millisecond

type dialFunc func(channelName string) (*ipc.Client, error)

// connect dials until it succeeds or budget has been spent waiting.
// The budget counts poll intervals slept, not wall time, so a slow
// dial does not eat into it.
func connect(ctx context.Context, channelName string, budget time.Duration, clk clock.Clock, dial dialFunc) (*ipc.Client, error) {
	var waited time.Duration
	for {
		client, err := dial(channelName)
		if err == nil {
			return client, nil
		}
		if waited >= budget {
			return nil, fmt.Errorf("%w after %v: %w", ErrConnectTimeout, budget, err)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-clk.After(connectPollInterval):
		}
		waited += connectPollInterval
	}
}
