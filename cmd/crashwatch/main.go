// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// crashwatch inspects dump files written by a crashwatch supervisor.
//
//	crashwatch inspect [--json] FILE
//	crashwatch version
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/bureau-foundation/crashwatch/lib/process"
	"github.com/bureau-foundation/crashwatch/lib/version"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		process.Fatal(err)
	}
}

func run(args []string, stdout io.Writer) error {
	if len(args) == 0 {
		printUsage(stdout)
		return fmt.Errorf("missing command")
	}

	switch args[0] {
	case "inspect":
		return inspectCommand(args[1:], stdout)
	case "version", "--version":
		fmt.Fprintf(stdout, "crashwatch %s\n", version.Full())
		return nil
	case "help", "-h", "--help":
		printUsage(stdout)
		return nil
	default:
		return fmt.Errorf("unknown command %q (run \"crashwatch help\")", args[0])
	}
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `crashwatch reads the minidumps written by crashwatch supervisors.

Usage:
  crashwatch inspect [--json] FILE   print the streams of a dump
  crashwatch version                 print version information

Examples:
  # Summarize a dump
  crashwatch inspect /tmp/Crashes/0b6c8f0e-....dmp

  # Decode every stream as JSON
  crashwatch inspect --json crash.dmp | jq .crash_info
`)
}
