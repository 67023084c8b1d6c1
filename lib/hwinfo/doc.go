// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package hwinfo describes the machine a dump was written on.
//
// On Linux [Probe] reads the kernel release, CPU model, memory totals,
// NUMA node count and DMI board identity from uname(2), sysinfo(2),
// /proc and /sys. Missing or unreadable sources leave their fields at
// the zero value; a headless VM with no DMI data is still a valid
// machine. Other platforms return an empty [Machine].
package hwinfo
