// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package watchdog detects a process's own fatal crashes from a second
// process.
//
// An application calls [Spawn] early in main. Spawn re-executes the
// current binary with a single marker argument (--crash-reporter-server
// by default) to start a supervisor, connects to it over a Unix socket
// named by a fresh channel name, and returns a [Handle]. From then on:
//
//   - a heartbeat goroutine pings the supervisor every half stale
//     timeout, so an idle supervisor knows the application is alive;
//   - panics reaching a deferred [Handle.Guard], and fatal signals
//     delivered by kill, ask the supervisor for a dump and exit with
//     status 2 once it is acknowledged;
//   - unrecoverable runtime errors (concurrent map writes, stack
//     exhaustion, panics on unguarded goroutines) are written by the
//     runtime to a crash output file, which the supervisor turns into
//     a dump when the connection drops.
//
// The supervisor side is the same Spawn call: when the marker is
// present, Spawn serves the one connection, delivers each dump to
// [Config.OnMinidump] and each application message to
// [Config.OnMessage], and exits the process with status 0 once the
// application crashes, disconnects or goes stale. Spawn must therefore
// run before the application does anything it would not want repeated
// in the supervisor:
//
//	func main() {
//		cfg := watchdog.DefaultConfig()
//		cfg.OnMinidump = upload
//		handle, err := watchdog.Spawn(cfg)
//		if err != nil {
//			log.Fatal(err)
//		}
//		defer handle.Close()
//		defer handle.Guard()
//		run()
//	}
//
// Close never kills the supervisor; it exits on its own when the
// connection closes.
package watchdog
