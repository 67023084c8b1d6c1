// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process owns process termination for crashwatch.
//
// Two places end the process on purpose: the supervisor role, which
// always exits 0 once its event loop returns, and binary entrypoints
// that fail before a logger exists. Both go through [Exit], a variable
// so tests can observe the exit code instead of losing the test binary.
package process
