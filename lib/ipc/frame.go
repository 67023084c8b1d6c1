// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ipc

import (
	"fmt"

	"github.com/bureau-foundation/crashwatch/lib/crashtrap"
)

// FrameType identifies a frame. Values are part of the wire protocol.
type FrameType uint8

const (
	FramePing    FrameType = 1
	FramePong    FrameType = 2
	FrameMessage FrameType = 3
	FrameDump    FrameType = 4
	FrameDumpAck FrameType = 5
)

func (t FrameType) String() string {
	switch t {
	case FramePing:
		return "ping"
	case FramePong:
		return "pong"
	case FrameMessage:
		return "message"
	case FrameDump:
		return "dump"
	case FrameDumpAck:
		return "dump-ack"
	default:
		return fmt.Sprintf("frame(%d)", uint8(t))
	}
}

// Frame is the single wire type. Which fields are set depends on Type.
type Frame struct {
	Type FrameType `cbor:"type"`

	// Kind and Payload carry a FrameMessage.
	Kind    uint32 `cbor:"kind,omitempty"`
	Payload []byte `cbor:"payload,omitempty"`

	// Crash carries a FrameDump.
	Crash *crashtrap.Context `cbor:"crash,omitempty"`

	// OK and Error carry a FrameDumpAck. OK is false when the
	// supervisor could not write the dump.
	OK    bool   `cbor:"ok,omitempty"`
	Error string `cbor:"error,omitempty"`
}
