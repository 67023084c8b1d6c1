// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package watchdog

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/bureau-foundation/crashwatch/lib/role"
)

// launchSupervisor starts the current executable with only the marker
// argument. The supervisor shares stdout and stderr and runs in its
// own process group, so a terminal interrupt aimed at the application
// does not also take down the process that reports on it.
func launchSupervisor(marker, channelName string) (*exec.Cmd, error) {
	executable, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("locating executable: %w", err)
	}

	cmd := exec.Command(executable, role.Argument(marker, channelName))
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.SysProcAttr = supervisorProcAttr()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", executable, err)
	}
	return cmd, nil
}
