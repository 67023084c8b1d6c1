// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package crashtrap

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"
)

// ReadCrashOutput reads a runtime crash report written through a
// Trap's CrashOutputPath by process pid. It returns found=false when
// the file does not exist or is empty, which means the process did not
// die of an unrecoverable runtime error.
func ReadCrashOutput(path string, pid int) (*Context, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("reading crash output %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, false, nil
	}

	crash := &Context{
		Source:     SourceRuntime,
		Reason:     crashReason(data),
		Signal:     crashSignal(data),
		Goroutines: data,
		PID:        pid,
		Time:       time.Now().UTC(),
	}
	if info, statErr := os.Stat(path); statErr == nil {
		crash.Time = info.ModTime().UTC()
	}
	return crash, true, nil
}

// crashReason picks the line explaining the crash: the first
// "panic: " or "fatal error: " line, else the first non-empty line.
func crashReason(report []byte) string {
	var first string
	for _, line := range strings.Split(string(report), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if first == "" {
			first = line
		}
		if strings.HasPrefix(line, "panic: ") || strings.HasPrefix(line, "fatal error: ") {
			return line
		}
	}
	return first
}

// crashSignal extracts NAME from a "[signal NAME: ...]" line.
func crashSignal(report []byte) string {
	const marker = "[signal "
	index := bytes.Index(report, []byte(marker))
	if index < 0 {
		return ""
	}
	rest := report[index+len(marker):]
	end := bytes.IndexAny(rest, ": ]")
	if end <= 0 {
		return ""
	}
	return string(rest[:end])
}
