// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package minidump

import (
	"bytes"
	"regexp"
	"strconv"
	"time"
)

// CrashInfo is the payload of StreamCrashInfo.
type CrashInfo struct {
	Source    string    `cbor:"source"`
	Reason    string    `cbor:"reason"`
	Signal    string    `cbor:"signal,omitempty"`
	PID       int       `cbor:"pid"`
	Time      time.Time `cbor:"time"`
	Truncated bool      `cbor:"truncated,omitempty"`
}

// Goroutine is one parsed goroutine traceback.
type Goroutine struct {
	ID    int64  `cbor:"id"`
	State string `cbor:"state"`
	// Frames is the traceback body, one "function\n\tfile:line" pair
	// per frame, exactly as printed by the runtime.
	Frames string `cbor:"frames"`
}

// ThreadList is the payload of StreamThreadList. Text that is not a
// goroutine block (a runtime crash preamble, a truncated tail) is kept
// in Unparsed.
type ThreadList struct {
	Goroutines []Goroutine `cbor:"goroutines"`
	Unparsed   string      `cbor:"unparsed,omitempty"`
}

// SystemInfo is the payload of StreamSystemInfo.
type SystemInfo struct {
	OS        string `cbor:"os"`
	Arch      string `cbor:"arch"`
	CPUs      int    `cbor:"cpus"`
	GoVersion string `cbor:"go_version"`
	Hostname  string `cbor:"hostname,omitempty"`
	// WriterPID is the process that wrote the dump, normally the
	// supervisor.
	WriterPID int `cbor:"writer_pid"`

	Kernel      string `cbor:"kernel,omitempty"`
	CPUModel    string `cbor:"cpu_model,omitempty"`
	MemoryBytes uint64 `cbor:"memory_bytes,omitempty"`
	SwapBytes   uint64 `cbor:"swap_bytes,omitempty"`
	NUMANodes   int    `cbor:"numa_nodes,omitempty"`
	BoardVendor string `cbor:"board_vendor,omitempty"`
	BoardName   string `cbor:"board_name,omitempty"`
}

// Module is one entry of a ModuleList.
type Module struct {
	Path    string `cbor:"path"`
	Version string `cbor:"version,omitempty"`
	Sum     string `cbor:"sum,omitempty"`
}

// ModuleList is the payload of StreamModuleList: the build info of the
// writing executable. The monitored process is the same executable.
type ModuleList struct {
	Main         Module   `cbor:"main"`
	Dependencies []Module `cbor:"dependencies,omitempty"`
	Crashwatch   string   `cbor:"crashwatch"`

	// Executable and ExecutableDigest identify the binary on disk.
	// Both are empty when it could not be read.
	Executable       string `cbor:"executable,omitempty"`
	ExecutableDigest string `cbor:"executable_digest,omitempty"`
}

var goroutineHeader = regexp.MustCompile(`^goroutine (\d+) \[([^\]]*)\]:$`)

// ParseGoroutines splits runtime traceback text into goroutines.
func ParseGoroutines(text []byte) ThreadList {
	var list ThreadList
	var unparsed [][]byte
	for _, block := range bytes.Split(text, []byte("\n\n")) {
		block = bytes.TrimRight(block, "\n")
		if len(block) == 0 {
			continue
		}
		header, body, _ := bytes.Cut(block, []byte("\n"))
		match := goroutineHeader.FindSubmatch(header)
		if match == nil {
			unparsed = append(unparsed, block)
			continue
		}
		id, err := strconv.ParseInt(string(match[1]), 10, 64)
		if err != nil {
			unparsed = append(unparsed, block)
			continue
		}
		list.Goroutines = append(list.Goroutines, Goroutine{
			ID:     id,
			State:  string(match[2]),
			Frames: string(body),
		})
	}
	list.Unparsed = string(bytes.Join(unparsed, []byte("\n\n")))
	return list
}
