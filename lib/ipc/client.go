// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ipc

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bureau-foundation/crashwatch/lib/channel"
	"github.com/bureau-foundation/crashwatch/lib/codec"
	"github.com/bureau-foundation/crashwatch/lib/crashtrap"
)

// AckTimeout bounds every write and every request/reply exchange. It
// is also the upper bound the crash path waits for a dump-ack.
const AckTimeout = 5 * time.Second

var (
	// ErrDisconnected is returned once the connection has failed or
	// been closed. A Client never recovers from it.
	ErrDisconnected = errors.New("ipc: disconnected")

	// ErrDumpFailed means the supervisor acknowledged a dump request
	// but could not write the dump.
	ErrDumpFailed = errors.New("ipc: supervisor failed to write dump")
)

// Client is the monitored process's end of the connection. It is safe
// for concurrent use: each frame, and each request with its reply, is
// written and read under one lock, so frames from different goroutines
// never interleave.
type Client struct {
	conn net.Conn

	mu      sync.Mutex
	encoder *codec.Encoder
	decoder *codec.Decoder
	broken  bool

	closed atomic.Bool
}

// Dial connects to the server listening on the channel name.
func Dial(name string) (*Client, error) {
	conn, err := net.Dial("unix", channel.Address(name))
	if err != nil {
		return nil, err
	}
	return NewClient(conn), nil
}

// NewClient wraps an established connection.
func NewClient(conn net.Conn) *Client {
	return &Client{
		conn:    conn,
		encoder: codec.NewEncoder(conn),
		decoder: codec.NewDecoder(conn),
	}
}

// Ping sends a ping and waits for the pong.
func (c *Client) Ping() error {
	_, err := c.exchange(Frame{Type: FramePing}, FramePong)
	return err
}

// SendMessage sends an application message. The server does not reply.
func (c *Client) SendMessage(kind uint32, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.usable(); err != nil {
		return err
	}
	c.conn.SetWriteDeadline(time.Now().Add(AckTimeout))
	if err := c.encoder.Encode(Frame{Type: FrameMessage, Kind: kind, Payload: payload}); err != nil {
		return c.fail(err)
	}
	return nil
}

// RequestDump sends the crash context and waits for the supervisor to
// acknowledge that the dump has been written.
func (c *Client) RequestDump(crash *crashtrap.Context) error {
	ack, err := c.exchange(Frame{Type: FrameDump, Crash: crash}, FrameDumpAck)
	if err != nil {
		return err
	}
	if !ack.OK {
		return fmt.Errorf("%w: %s", ErrDumpFailed, ack.Error)
	}
	return nil
}

// Close closes the connection. Calls in progress fail with
// ErrDisconnected. Safe to call more than once.
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	return c.conn.Close()
}

func (c *Client) exchange(request Frame, replyType FrameType) (Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.usable(); err != nil {
		return Frame{}, err
	}

	c.conn.SetDeadline(time.Now().Add(AckTimeout))
	defer c.conn.SetDeadline(time.Time{})

	if err := c.encoder.Encode(request); err != nil {
		return Frame{}, c.fail(err)
	}
	var reply Frame
	if err := c.decoder.Decode(&reply); err != nil {
		return Frame{}, c.fail(err)
	}
	if reply.Type != replyType {
		return Frame{}, c.fail(fmt.Errorf("expected %v reply to %v, got %v", replyType, request.Type, reply.Type))
	}
	return reply, nil
}

// usable must be called with mu held.
func (c *Client) usable() error {
	if c.broken || c.closed.Load() {
		return ErrDisconnected
	}
	return nil
}

// fail marks the client broken and closes the connection. A failed
// read or write may have left a partial frame on the stream, so the
// connection cannot be reused. Must be called with mu held.
func (c *Client) fail(err error) error {
	c.broken = true
	c.Close()
	return fmt.Errorf("%w: %w", ErrDisconnected, err)
}
