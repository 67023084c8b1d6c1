// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package ipc

import (
	"errors"
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

var errPeerCredentialsUnsupported = errors.New("peer credentials unsupported")

// peerPID returns the pid of the process on the other end of conn, as
// recorded by the kernel when it connected.
func peerPID(conn *net.UnixConn) (int, error) {
	raw, err := conn.SyscallConn()
	if err != nil {
		return 0, fmt.Errorf("getting raw connection: %w", err)
	}
	var credentials *unix.Ucred
	var credentialsErr error
	if err := raw.Control(func(fd uintptr) {
		credentials, credentialsErr = unix.GetsockoptUcred(int(fd), unix.SOL_SOCKET, unix.SO_PEERCRED)
	}); err != nil {
		return 0, fmt.Errorf("reading peer credentials: %w", err)
	}
	if credentialsErr != nil {
		return 0, fmt.Errorf("reading peer credentials: %w", credentialsErr)
	}
	return int(credentials.Pid), nil
}
