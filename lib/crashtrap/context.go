// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package crashtrap

import (
	"os"
	"runtime"
	"time"
)

// Source identifies how a crash was captured.
type Source uint8

const (
	// SourcePanic is a recovered panic, including runtime memory
	// faults converted to panics.
	SourcePanic Source = iota + 1
	// SourceSignal is an asynchronously delivered fatal signal.
	SourceSignal
	// SourceRuntime is an unrecoverable runtime error read back from
	// the crash output file.
	SourceRuntime
)

func (s Source) String() string {
	switch s {
	case SourcePanic:
		return "panic"
	case SourceSignal:
		return "signal"
	case SourceRuntime:
		return "runtime"
	default:
		return "unknown"
	}
}

// Context describes one crash. It is serialized as-is into the dump
// request sent to the supervisor.
type Context struct {
	Source Source `cbor:"source"`

	// Reason is the panic value, the signal description, or the first
	// line of the runtime crash report.
	Reason string `cbor:"reason"`

	// Signal is the signal name (e.g. "SIGSEGV") when one is known.
	Signal string `cbor:"signal,omitempty"`

	// Goroutines is the traceback text of every goroutine, in the
	// format printed by the runtime. Truncated to the trap's stack
	// buffer size.
	Goroutines []byte `cbor:"goroutines,omitempty"`

	// Truncated is set when Goroutines did not fit the buffer.
	Truncated bool `cbor:"truncated,omitempty"`

	PID  int       `cbor:"pid"`
	Time time.Time `cbor:"time"`
}

// capture fills a Context using buffer for the goroutine dump. buffer
// is preallocated so that capturing does not allocate proportionally
// to the number of goroutines while the process is failing.
func capture(source Source, reason, signal string, buffer []byte) *Context {
	n := runtime.Stack(buffer, true)
	return &Context{
		Source:     source,
		Reason:     reason,
		Signal:     signal,
		Goroutines: buffer[:n],
		Truncated:  n == len(buffer),
		PID:        os.Getpid(),
		Time:       time.Now().UTC(),
	}
}
