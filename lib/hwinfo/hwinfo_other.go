// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !linux

package hwinfo

// Probe returns an empty inventory on this platform.
func Probe() Machine {
	return Machine{}
}
