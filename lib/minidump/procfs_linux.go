// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package minidump

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// captureProcess reads /proc/<pid>. Files the supervisor cannot read
// (the process already exited, or Yama denied access) are skipped.
func captureProcess(pid int) []processStream {
	dir := filepath.Join("/proc", strconv.Itoa(pid))
	sources := []struct {
		streamType StreamType
		name       string
	}{
		{StreamLinuxProcStatus, "status"},
		{StreamLinuxCmdLine, "cmdline"},
		{StreamLinuxMaps, "maps"},
	}

	var streams []processStream
	for _, source := range sources {
		data, err := os.ReadFile(filepath.Join(dir, source.name))
		if err != nil || len(data) == 0 {
			continue
		}
		text := string(data)
		if source.streamType == StreamLinuxCmdLine {
			text = strings.TrimRight(strings.ReplaceAll(text, "\x00", " "), " ")
		}
		streams = append(streams, processStream{streamType: source.streamType, text: text})
	}
	return streams
}
