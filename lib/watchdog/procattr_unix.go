// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build unix

package watchdog

import "syscall"

// supervisorProcAttr puts the supervisor in its own process group. No
// Pdeathsig: the supervisor has to outlive a crashed parent long
// enough to write the dump.
func supervisorProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}
