// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package crashtrap intercepts fatal failures of the current process
// and hands a [Context] describing them to a registered handler.
//
// Three kinds of failure are captured:
//
//   - Panics, including the runtime panics Go raises for memory faults
//     (nil dereference, out-of-range access), on goroutines that defer
//     [Trap.Recover].
//   - Fatal signals delivered asynchronously (kill -SEGV, abort(3) from
//     C code): SIGABRT, SIGBUS, SIGFPE, SIGILL, SIGSEGV and SIGTRAP.
//   - Unrecoverable runtime errors (concurrent map writes, stack
//     exhaustion, panics on goroutines without Recover). These cannot
//     run Go code, so the runtime's own crash report is redirected to a
//     file with runtime/debug.SetCrashOutput; another process reads it
//     back with [ReadCrashOutput] once this one is gone.
//
// The handler fires at most once per Trap. It runs on the failing
// goroutine and must do only bounded work: the rest of the process may
// be in an arbitrary state. A handler returning [Handled] ends the
// process with status 2 and suppresses the default crash output. One
// returning [Unhandled] lets the default behavior continue: the panic
// is re-raised, or the signal is re-delivered with its default action.
package crashtrap
