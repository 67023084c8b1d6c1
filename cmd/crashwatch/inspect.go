// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/crashwatch/lib/codec"
	"github.com/bureau-foundation/crashwatch/lib/minidump"
)

func inspectCommand(args []string, stdout io.Writer) error {
	var asJSON bool
	flagSet := pflag.NewFlagSet("crashwatch inspect", pflag.ContinueOnError)
	flagSet.BoolVar(&asJSON, "json", false, "print every stream decoded as JSON")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if flagSet.NArg() != 1 {
		return fmt.Errorf("inspect takes exactly one dump file, got %d arguments", flagSet.NArg())
	}

	dump, err := minidump.ReadFile(flagSet.Arg(0))
	if err != nil {
		return err
	}
	if asJSON {
		return printJSON(stdout, dump)
	}
	return printSummary(stdout, dump)
}

// decodeStream decodes a stream into its typed payload. Streams of
// unknown type decode generically, or into diagnostic notation when
// they have non-string map keys.
func decodeStream(stream minidump.Stream) (any, error) {
	var value any
	switch stream.Type {
	case minidump.StreamCrashInfo:
		value = &minidump.CrashInfo{}
	case minidump.StreamThreadList:
		value = &minidump.ThreadList{}
	case minidump.StreamSystemInfo:
		value = &minidump.SystemInfo{}
	case minidump.StreamModuleList:
		value = &minidump.ModuleList{}
	case minidump.StreamLinuxProcStatus, minidump.StreamLinuxCmdLine, minidump.StreamLinuxMaps:
		value = new(string)
	default:
		var generic any
		if err := codec.Unmarshal(stream.Data, &generic); err == nil {
			return generic, nil
		}
		diagnostic, err := codec.Diagnose(stream.Data)
		if err != nil {
			return nil, fmt.Errorf("%v stream: %w", stream.Type, err)
		}
		return diagnostic, nil
	}
	if err := codec.Unmarshal(stream.Data, value); err != nil {
		return nil, fmt.Errorf("decoding %v stream: %w", stream.Type, err)
	}
	return value, nil
}

func printJSON(w io.Writer, dump *minidump.Dump) error {
	output := map[string]any{
		"version":   fmt.Sprintf("0x%08x", dump.Version),
		"timestamp": dump.Timestamp,
		"digest":    fmt.Sprintf("%x", dump.Digest),
	}
	for _, stream := range dump.Streams {
		if stream.Type == minidump.StreamDigest {
			continue
		}
		value, err := decodeStream(stream)
		if err != nil {
			return err
		}
		output[stream.Type.String()] = value
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func printSummary(w io.Writer, dump *minidump.Dump) error {
	fmt.Fprintf(w, "Dump version 0x%08x, written %s\n", dump.Version, dump.Timestamp.Format("2006-01-02 15:04:05 MST"))
	if dump.Digest != ([32]byte{}) {
		fmt.Fprintf(w, "Digest %x (verified)\n", dump.Digest)
	}

	fmt.Fprintf(w, "\nStreams:\n")
	for _, stream := range dump.Streams {
		fmt.Fprintf(w, "  %-18s %-5s %8d bytes stored, %8d raw\n",
			stream.Type, stream.Compression, stream.StoredSize, len(stream.Data))
	}

	var crash minidump.CrashInfo
	if err := dump.Decode(minidump.StreamCrashInfo, &crash); err == nil {
		fmt.Fprintf(w, "\nCrash:\n  source: %s\n  reason: %s\n", crash.Source, crash.Reason)
		if crash.Signal != "" {
			fmt.Fprintf(w, "  signal: %s\n", crash.Signal)
		}
		fmt.Fprintf(w, "  pid:    %d\n  time:   %s\n", crash.PID, crash.Time.Format("2006-01-02 15:04:05 MST"))
	}

	var system minidump.SystemInfo
	if err := dump.Decode(minidump.StreamSystemInfo, &system); err == nil {
		fmt.Fprintf(w, "\nSystem:\n  %s/%s, %d CPUs, %s, host %s\n",
			system.OS, system.Arch, system.CPUs, system.GoVersion, system.Hostname)
		if system.Kernel != "" {
			fmt.Fprintf(w, "  kernel %s, %d MiB RAM\n", system.Kernel, system.MemoryBytes>>20)
		}
		if system.CPUModel != "" {
			fmt.Fprintf(w, "  cpu %s\n", system.CPUModel)
		}
	}

	var modules minidump.ModuleList
	if err := dump.Decode(minidump.StreamModuleList, &modules); err == nil {
		fmt.Fprintf(w, "\nBuild:\n  main:       %s %s\n  crashwatch: %s\n", modules.Main.Path, modules.Main.Version, modules.Crashwatch)
		if modules.ExecutableDigest != "" {
			fmt.Fprintf(w, "  executable: %s\n  blake3:     %s\n", modules.Executable, modules.ExecutableDigest)
		}
	}

	var threads minidump.ThreadList
	if err := dump.Decode(minidump.StreamThreadList, &threads); err == nil {
		fmt.Fprintf(w, "\nGoroutines (%d):\n", len(threads.Goroutines))
		for _, goroutine := range threads.Goroutines {
			top, _, _ := strings.Cut(goroutine.Frames, "\n")
			fmt.Fprintf(w, "  %6d [%s] %s\n", goroutine.ID, goroutine.State, top)
		}
	}
	return nil
}
