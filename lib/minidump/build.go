// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package minidump

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/bureau-foundation/crashwatch/lib/binhash"
	"github.com/bureau-foundation/crashwatch/lib/crashtrap"
	"github.com/bureau-foundation/crashwatch/lib/hwinfo"
	"github.com/bureau-foundation/crashwatch/lib/version"
)

// BuildOptions controls Build.
type BuildOptions struct {
	Compression Compression

	// CaptureProcess adds the /proc streams of the crashed process
	// when the platform has them and the process is still readable.
	CaptureProcess bool
}

// Build serializes crash into a dump.
func Build(crash *crashtrap.Context, options BuildOptions) ([]byte, error) {
	if crash == nil {
		return nil, fmt.Errorf("minidump: nil crash context")
	}
	writer := NewWriter(options.Compression)

	if err := writer.Add(StreamCrashInfo, CrashInfo{
		Source:    crash.Source.String(),
		Reason:    crash.Reason,
		Signal:    crash.Signal,
		PID:       crash.PID,
		Time:      crash.Time,
		Truncated: crash.Truncated,
	}); err != nil {
		return nil, err
	}
	if err := writer.Add(StreamThreadList, ParseGoroutines(crash.Goroutines)); err != nil {
		return nil, err
	}
	if err := writer.Add(StreamSystemInfo, currentSystem()); err != nil {
		return nil, err
	}
	if err := writer.Add(StreamModuleList, currentModules()); err != nil {
		return nil, err
	}

	if options.CaptureProcess && crash.PID > 0 {
		for _, stream := range captureProcess(crash.PID) {
			if err := writer.Add(stream.streamType, stream.text); err != nil {
				return nil, err
			}
		}
	}

	timestamp := crash.Time
	if timestamp.IsZero() {
		timestamp = time.Now()
	}
	return writer.Bytes(timestamp)
}

func currentSystem() SystemInfo {
	hostname, _ := os.Hostname()
	machine := hwinfo.Probe()
	return SystemInfo{
		OS:          runtime.GOOS,
		Arch:        runtime.GOARCH,
		CPUs:        runtime.NumCPU(),
		GoVersion:   runtime.Version(),
		Hostname:    hostname,
		WriterPID:   os.Getpid(),
		Kernel:      machine.Kernel,
		CPUModel:    machine.CPUModel,
		MemoryBytes: machine.MemoryBytes,
		SwapBytes:   machine.SwapBytes,
		NUMANodes:   machine.NUMANodes,
		BoardVendor: machine.BoardVendor,
		BoardName:   machine.BoardName,
	}
}

func currentModules() ModuleList {
	list := ModuleList{Crashwatch: version.Info()}
	if path, digest, err := binhash.HashExecutable(); err == nil {
		list.Executable = path
		list.ExecutableDigest = binhash.FormatDigest(digest)
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return list
	}
	list.Main = Module{Path: info.Main.Path, Version: info.Main.Version, Sum: info.Main.Sum}
	for _, dep := range info.Deps {
		if dep.Replace != nil {
			dep = dep.Replace
		}
		list.Dependencies = append(list.Dependencies, Module{Path: dep.Path, Version: dep.Version, Sum: dep.Sum})
	}
	return list
}

// processStream is one text stream read from the crashed process.
type processStream struct {
	streamType StreamType
	text       string
}
