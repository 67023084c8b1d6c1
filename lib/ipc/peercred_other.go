// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !linux

package ipc

import (
	"errors"
	"net"
)

var errPeerCredentialsUnsupported = errors.New("peer credentials unsupported")

func peerPID(*net.UnixConn) (int, error) {
	return 0, errPeerCredentialsUnsupported
}
