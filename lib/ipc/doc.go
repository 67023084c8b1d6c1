// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package ipc implements the socket protocol between a monitored
// process and its crash supervisor.
//
// The monitored process is the [Client]; the supervisor is the
// [Server]. They talk over one Unix stream socket, named by a channel
// name (see lib/channel), with [Frame] values CBOR-encoded back to
// back. CBOR is self-delimiting, so no length prefix is needed.
//
// Exchanges:
//
//	ping    → pong       liveness (heartbeat, and once on crash)
//	message              application payload, no reply
//	dump    → dump-ack   crash context in, minidump written, then ack
//
// The server accepts exactly one client. On Linux the client's pid is
// read from SO_PEERCRED and compared with [ServerOptions.ExpectedPeer];
// connections from any other process are closed without counting as
// the accepted client.
//
// The server is a single blocking event loop: [Server.Run] returns when
// a dump has been handled, the client disconnects, no frame arrives for
// the stale timeout, or the context is cancelled. Callbacks on
// [Handler] run on the loop goroutine.
package ipc
