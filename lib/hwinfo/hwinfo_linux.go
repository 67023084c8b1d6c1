// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package hwinfo

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// Probe collects the static inventory of this machine. It never
// fails; unreadable sources produce zero-valued fields.
func Probe() Machine {
	machine := probeFrom("/proc", "/sys")
	machine.Kernel = readKernelVersion()
	machine.MemoryBytes, machine.SwapBytes = probeMemory()
	return machine
}

// probeFrom reads the file-backed fields with /proc and /sys rooted
// at procRoot and sysRoot.
func probeFrom(procRoot, sysRoot string) Machine {
	return Machine{
		CPUModel:    readCPUModel(filepath.Join(procRoot, "cpuinfo")),
		NUMANodes:   countNUMANodes(sysRoot),
		BoardVendor: readSysfsString(filepath.Join(sysRoot, "class/dmi/id/sys_vendor")),
		BoardName:   readSysfsString(filepath.Join(sysRoot, "class/dmi/id/board_name")),
	}
}

func readKernelVersion() string {
	var utsname unix.Utsname
	if err := unix.Uname(&utsname); err != nil {
		return ""
	}
	return unix.ByteSliceToString(utsname.Release[:])
}

// readCPUModel returns the first "model name" value in cpuinfo.
func readCPUModel(path string) string {
	file, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		key, value, found := strings.Cut(scanner.Text(), ":")
		if found && strings.TrimSpace(key) == "model name" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func probeMemory() (memory, swap uint64) {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return 0, 0
	}
	unit := uint64(info.Unit)
	return uint64(info.Totalram) * unit, uint64(info.Totalswap) * unit
}

// countNUMANodes counts the nodeN directories under devices/system/node.
func countNUMANodes(sysRoot string) int {
	entries, err := os.ReadDir(filepath.Join(sysRoot, "devices/system/node"))
	if err != nil {
		return 0
	}
	count := 0
	for _, entry := range entries {
		suffix, ok := strings.CutPrefix(entry.Name(), "node")
		if entry.IsDir() && ok && len(suffix) > 0 && suffix[0] >= '0' && suffix[0] <= '9' {
			count++
		}
	}
	return count
}

func readSysfsString(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
