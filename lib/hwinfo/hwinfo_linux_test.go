// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package hwinfo

import (
	"os"
	"path/filepath"
	"testing"
)

// writeSyntheticFile creates root/path, creating parent directories
// as needed.
func writeSyntheticFile(t *testing.T, root, path, content string) {
	t.Helper()
	fullPath := filepath.Join(root, path)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(fullPath), err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", fullPath, err)
	}
}

func TestProbeFromSyntheticFS(t *testing.T) {
	root := t.TempDir()

	writeSyntheticFile(t, root, "proc/cpuinfo",
		"processor\t: 0\nvendor_id\t: AuthenticAMD\nmodel name\t: AMD EPYC 7763 64-Core Processor\n\n"+
			"processor\t: 1\nmodel name\t: AMD EPYC 7763 64-Core Processor\n\n")
	for _, node := range []string{"node0", "node1", "nodefoo"} {
		if err := os.MkdirAll(filepath.Join(root, "sys/devices/system/node", node), 0755); err != nil {
			t.Fatalf("mkdir node: %v", err)
		}
	}
	writeSyntheticFile(t, root, "sys/devices/system/node/possible", "0-1\n")
	writeSyntheticFile(t, root, "sys/class/dmi/id/sys_vendor", "ASUS\n")
	writeSyntheticFile(t, root, "sys/class/dmi/id/board_name", "Pro WS WRX90E-SAGE SE\n")

	machine := probeFrom(filepath.Join(root, "proc"), filepath.Join(root, "sys"))

	if machine.CPUModel != "AMD EPYC 7763 64-Core Processor" {
		t.Errorf("CPUModel = %q", machine.CPUModel)
	}
	if machine.NUMANodes != 2 {
		t.Errorf("NUMANodes = %d, want 2", machine.NUMANodes)
	}
	if machine.BoardVendor != "ASUS" {
		t.Errorf("BoardVendor = %q, want ASUS", machine.BoardVendor)
	}
	if machine.BoardName != "Pro WS WRX90E-SAGE SE" {
		t.Errorf("BoardName = %q", machine.BoardName)
	}
}

func TestProbeFromEmptyFS(t *testing.T) {
	machine := probeFrom(filepath.Join(t.TempDir(), "proc"), filepath.Join(t.TempDir(), "sys"))
	if machine != (Machine{}) {
		t.Errorf("probeFrom(empty) = %+v, want zero value", machine)
	}
}

func TestProbe(t *testing.T) {
	machine := Probe()
	if machine.Kernel == "" {
		t.Error("Kernel is empty")
	}
	if machine.MemoryBytes == 0 {
		t.Error("MemoryBytes is zero")
	}
}
