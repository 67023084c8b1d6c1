// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package role decides, from a process's startup arguments, whether
// this instance of the executable is the application being monitored
// or the supervisor spawned to watch it.
//
// The supervisor is the same executable re-invoked with one extra
// argument of the form "<marker>=<channel name>". Everything else is
// the monitored application. [Select] is the only place crashwatch
// reads the argument list.
package role

import "strings"

// DefaultMarker is the argument name that identifies the supervisor.
const DefaultMarker = "--crash-reporter-server"

// separator splits the marker from the channel name.
const separator = "="

// Kind distinguishes the two roles.
type Kind int

const (
	// Monitored is the application process being watched.
	Monitored Kind = iota
	// Supervisor is the companion process waiting for crash reports.
	Supervisor
)

func (k Kind) String() string {
	switch k {
	case Monitored:
		return "monitored"
	case Supervisor:
		return "supervisor"
	default:
		return "unknown"
	}
}

// Role is the outcome of Select. ChannelName is set only for
// Supervisor.
type Role struct {
	Kind        Kind
	ChannelName string
}

// Select scans args for the first argument starting with marker. If
// one is found the process is the supervisor, and the channel name is
// whatever follows the last separator in that argument. Otherwise the
// process is monitored.
//
// args should include the program name (os.Args); it never matches a
// marker in practice, so passing os.Args[1:] works equally well.
func Select(args []string, marker string) Role {
	for _, arg := range args {
		if !strings.HasPrefix(arg, marker) {
			continue
		}
		name := arg
		if index := strings.LastIndex(arg, separator); index >= 0 {
			name = arg[index+len(separator):]
		}
		return Role{Kind: Supervisor, ChannelName: name}
	}
	return Role{Kind: Monitored}
}

// IsSupervisor reports whether args carry the supervisor marker.
func IsSupervisor(args []string, marker string) bool {
	return Select(args, marker).Kind == Supervisor
}

// Argument formats the marker argument passed to the supervisor.
func Argument(marker, channelName string) string {
	return marker + separator + channelName
}
