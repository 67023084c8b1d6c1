// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package crashtrap

import (
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/bureau-foundation/crashwatch/lib/process"
)

// Result is a handler's verdict on a crash.
type Result int

const (
	// Unhandled lets the default crash behavior proceed.
	Unhandled Result = iota
	// Handled ends the process quietly with HandledExitCode.
	Handled
)

func (r Result) String() string {
	if r == Handled {
		return "handled"
	}
	return "unhandled"
}

// HandledExitCode is the status a process exits with after a handled
// crash. It matches the status Go uses for an unrecovered panic.
const HandledExitCode = 2

// DefaultStackBufferSize bounds the goroutine dump captured per crash.
const DefaultStackBufferSize = 1 << 20

// HandlerFunc is called once with the first crash seen by a Trap.
type HandlerFunc func(crash *Context) Result

// Options configures Attach.
type Options struct {
	// CrashOutputPath, when set, receives the runtime's report for
	// unrecoverable errors (see runtime/debug.SetCrashOutput). The
	// file is created or truncated by Attach.
	CrashOutputPath string

	// StackBufferSize overrides DefaultStackBufferSize.
	StackBufferSize int

	// Signals enables capture of asynchronously delivered fatal
	// signals. Only one Trap per process should enable it.
	Signals bool
}

// Trap is a registered crash handler. Create one with Attach and
// release it with Detach.
type Trap struct {
	handler     HandlerFunc
	stackBuffer []byte

	// triggered makes the handler fire at most once. A second crash
	// racing the first is reported Unhandled so it is never masked.
	triggered atomic.Bool

	signals    chan os.Signal
	stopSignal chan struct{}
	signalDone chan struct{}

	crashOutput bool
	detachOnce  sync.Once
}

// Attach registers handler and starts capturing crashes.
func Attach(handler HandlerFunc, options Options) (*Trap, error) {
	if handler == nil {
		return nil, fmt.Errorf("crashtrap: nil handler")
	}
	size := options.StackBufferSize
	if size <= 0 {
		size = DefaultStackBufferSize
	}

	trap := &Trap{
		handler:     handler,
		stackBuffer: make([]byte, size),
	}

	if options.CrashOutputPath != "" {
		file, err := os.OpenFile(options.CrashOutputPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
		if err != nil {
			return nil, fmt.Errorf("creating crash output file: %w", err)
		}
		// SetCrashOutput duplicates the descriptor, so ours can be
		// closed immediately.
		err = debug.SetCrashOutput(file, debug.CrashOptions{})
		file.Close()
		if err != nil {
			return nil, fmt.Errorf("redirecting runtime crash output: %w", err)
		}
		trap.crashOutput = true
	}

	if options.Signals && len(fatalSignals) > 0 {
		trap.signals = make(chan os.Signal, 1)
		trap.stopSignal = make(chan struct{})
		trap.signalDone = make(chan struct{})
		signal.Notify(trap.signals, fatalSignals...)
		go trap.watchSignals()
	}

	return trap, nil
}

// Recover must be deferred directly by the goroutine it protects:
//
//	defer trap.Recover()
//
// It captures a panic in progress and runs the handler.
func (t *Trap) Recover() {
	if value := recover(); value != nil {
		t.HandlePanic(value)
	}
}

// HandlePanic runs the handler for a panic value already obtained
// from recover(). For use by wrappers that must call recover
// themselves. If the crash is not handled, the value is re-panicked.
func (t *Trap) HandlePanic(value any) {
	crash := capture(SourcePanic, fmt.Sprint(value), panicSignal(value), t.stackBuffer)
	if t.fire(crash) == Handled {
		process.Exit(HandledExitCode)
		return
	}
	panic(value)
}

// fire runs the handler for the first crash only.
func (t *Trap) fire(crash *Context) Result {
	if !t.triggered.CompareAndSwap(false, true) {
		return Unhandled
	}
	return t.handler(crash)
}

func (t *Trap) watchSignals() {
	defer close(t.signalDone)
	select {
	case <-t.stopSignal:
		return
	case sig := <-t.signals:
		crash := capture(SourceSignal, "received signal "+signalName(sig), signalName(sig), t.stackBuffer)
		if t.fire(crash) == Handled {
			process.Exit(HandledExitCode)
			return
		}
		signal.Reset(sig)
		reraise(sig)
	}
}

// Detach stops capturing crashes and restores the default runtime
// crash output. Safe to call more than once.
func (t *Trap) Detach() {
	t.detachOnce.Do(func() {
		if t.signals != nil {
			signal.Stop(t.signals)
			close(t.stopSignal)
			<-t.signalDone
		}
		if t.crashOutput {
			_ = debug.SetCrashOutput(nil, debug.CrashOptions{})
		}
	})
}

// Triggered reports whether the handler has fired.
func (t *Trap) Triggered() bool {
	return t.triggered.Load()
}
