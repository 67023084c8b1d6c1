// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !unix

package crashtrap

import (
	"os"
	"runtime"
	"strings"

	"github.com/bureau-foundation/crashwatch/lib/process"
)

var fatalSignals []os.Signal

func signalName(sig os.Signal) string { return sig.String() }

func panicSignal(value any) string {
	if err, ok := value.(runtime.Error); ok && strings.Contains(err.Error(), "invalid memory address") {
		return "EXCEPTION_ACCESS_VIOLATION"
	}
	return ""
}

func reraise(os.Signal) { process.Exit(HandledExitCode) }
