// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !unix

package watchdog

import "syscall"

func supervisorProcAttr() *syscall.SysProcAttr { return nil }
