// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for crashwatch
// packages.
//
// [SocketDir] creates a short temporary directory in /tmp for path
// based sockets and crash directories. Unix domain socket paths are
// limited to 108 bytes, which deeply nested t.TempDir() paths exceed.
//
// [ChannelName] returns a fresh channel name for a test's supervisor
// socket and removes any socket file it leaves behind.
//
// [RequireReceive] and [RequireClosed] wrap the select-with-timeout
// pattern so tests never hang when a goroutine under test misbehaves.
//
// All helpers call t.Fatalf on failure.
package testutil
