// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts the sleeps and deadlines of the monitored
// side (connect retry and heartbeat) so they can be driven
// deterministically in tests.
//
// Production code uses [Real]. Tests use [Fake] and synchronize with
// the goroutine under test through [FakeClock.WaitForTimers] before
// calling [FakeClock.Advance]:
//
//	c := clock.Fake(time.Unix(0, 0))
//	go pinger.run(c)
//	c.WaitForTimers(1)
//	c.Advance(2500 * time.Millisecond)
//
// Socket deadlines (SetReadDeadline and friends) are enforced by the
// kernel and always use wall-clock time; they are not routed through
// this package.
package clock
