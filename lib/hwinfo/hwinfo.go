// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package hwinfo

// Machine is a static hardware inventory.
type Machine struct {
	Kernel      string
	CPUModel    string
	MemoryBytes uint64
	SwapBytes   uint64
	NUMANodes   int
	BoardVendor string
	BoardName   string
}
