// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build unix

package crashtrap

import (
	"os"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"github.com/bureau-foundation/crashwatch/lib/process"
)

var fatalSignals = []os.Signal{
	unix.SIGABRT,
	unix.SIGBUS,
	unix.SIGFPE,
	unix.SIGILL,
	unix.SIGSEGV,
	unix.SIGTRAP,
}

func signalName(sig os.Signal) string {
	if s, ok := sig.(unix.Signal); ok {
		if name := unix.SignalName(s); name != "" {
			return name
		}
	}
	return sig.String()
}

// panicSignal extracts the signal name from runtime fault panics such
// as "runtime error: invalid memory address or nil pointer
// dereference" raised for SIGSEGV.
func panicSignal(value any) string {
	if err, ok := value.(runtime.Error); ok {
		message := err.Error()
		if strings.Contains(message, "invalid memory address") || strings.Contains(message, "nil pointer") {
			return "SIGSEGV"
		}
		if strings.Contains(message, "integer divide by zero") {
			return "SIGFPE"
		}
	}
	return ""
}

// reraise delivers sig again with its default disposition restored.
// If the process is somehow still alive shortly after, it exits with
// the conventional 128+signal status.
func reraise(sig os.Signal) {
	s, ok := sig.(unix.Signal)
	if !ok {
		process.Exit(HandledExitCode)
		return
	}
	_ = unix.Kill(unix.Getpid(), s)
	time.Sleep(100 * time.Millisecond)
	process.Exit(128 + int(s))
}
