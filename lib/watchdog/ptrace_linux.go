// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package watchdog

import "golang.org/x/sys/unix"

// allowPtrace lets pid read this process's /proc entries under Yama's
// ptrace_scope=1, where only ancestors may by default.
func allowPtrace(pid int) error {
	return unix.Prctl(unix.PR_SET_PTRACER, uintptr(pid), 0, 0, 0)
}
