// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ipc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/bureau-foundation/crashwatch/lib/channel"
	"github.com/bureau-foundation/crashwatch/lib/codec"
	"github.com/bureau-foundation/crashwatch/lib/crashtrap"
	"github.com/bureau-foundation/crashwatch/lib/minidump"
	"github.com/bureau-foundation/crashwatch/lib/netutil"
)

// LoopAction tells the event loop what to do after a callback.
type LoopAction int

const (
	Continue LoopAction = iota
	Exit
)

// StopReason says why Run returned.
type StopReason int

const (
	// StopStale means no client connected, or the client sent no
	// frame, within the stale timeout.
	StopStale StopReason = iota + 1
	// StopDisconnected means the client went away and the handler
	// asked to exit.
	StopDisconnected
	// StopDump means a dump was handled and the handler asked to exit.
	StopDump
	// StopCancelled means the context was cancelled.
	StopCancelled
)

func (r StopReason) String() string {
	switch r {
	case StopStale:
		return "stale"
	case StopDisconnected:
		return "disconnected"
	case StopDump:
		return "dump"
	case StopCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// DumpBinary is a dump the server has written. File is the open dump
// file, positioned at its end; the handler owns it. Contents, when
// non-nil, holds the same bytes as the file and is authoritative.
type DumpBinary struct {
	File     *os.File
	Path     string
	Contents []byte
}

// Handler receives the supervisor's events. Every method is called on
// the Run goroutine.
type Handler interface {
	// CreateDumpFile opens a new file for a dump.
	CreateDumpFile() (*os.File, string, error)

	// OnDumpCreated is called after a dump request has been served and
	// acknowledged. binary is non-nil whenever a file was created, even
	// if writing it failed, so the handler can remove it.
	OnDumpCreated(binary *DumpBinary, err error) LoopAction

	// OnMessage is called for each application message.
	OnMessage(kind uint32, payload []byte)

	// OnClientDisconnected is called when the client's connection
	// ends. Returning Continue keeps the supervisor alive until the
	// stale timeout.
	OnClientDisconnected(clientID int) LoopAction
}

// ServerOptions configures a Server.
type ServerOptions struct {
	Logger *slog.Logger

	// Compression is applied to every dump stream.
	Compression minidump.Compression

	// ExpectedPeer is the only pid allowed to connect. Zero accepts
	// any peer. Ignored where peer credentials are unavailable.
	ExpectedPeer int

	// KeepContents fills DumpBinary.Contents with the dump bytes.
	KeepContents bool

	// CaptureProcess adds /proc streams of the crashed process to
	// every dump.
	CaptureProcess bool
}

// Server is the supervisor's end: it listens on a channel name and
// serves a single client.
type Server struct {
	name     string
	listener *net.UnixListener
	options  ServerOptions
	logger   *slog.Logger

	mu   sync.Mutex
	conn *net.UnixConn
}

// Listen binds the channel name. A leftover socket file from a
// previous run is removed first.
func Listen(name string, options ServerOptions) (*Server, error) {
	if channel.IsPath(name) {
		if err := os.Remove(name); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("removing stale socket %s: %w", name, err)
		}
	}
	listener, err := net.ListenUnix("unix", &net.UnixAddr{Name: channel.Address(name), Net: "unix"})
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", name, err)
	}

	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{name: name, listener: listener, options: options, logger: logger.With("channel", name)}, nil
}

// Name returns the channel name the server listens on.
func (s *Server) Name() string { return s.name }

// Close stops listening and closes the client connection, if any.
func (s *Server) Close() error {
	err := s.listener.Close()
	if errors.Is(err, net.ErrClosed) {
		err = nil
	}
	s.mu.Lock()
	if s.conn != nil {
		s.conn.Close()
	}
	s.mu.Unlock()
	if channel.IsPath(s.name) {
		os.Remove(s.name)
	}
	return err
}

// Run accepts one client and serves it until a stop condition. The
// stale timeout bounds both the wait for the client to connect and
// every wait for the next frame.
func (s *Server) Run(ctx context.Context, handler Handler, staleTimeout time.Duration) (StopReason, error) {
	stop := context.AfterFunc(ctx, func() {
		s.listener.SetDeadline(time.Now())
		s.mu.Lock()
		if s.conn != nil {
			s.conn.SetDeadline(time.Now())
		}
		s.mu.Unlock()
	})
	defer stop()

	conn, reason, err := s.accept(ctx, staleTimeout)
	if conn == nil {
		return reason, err
	}
	defer conn.Close()

	const clientID = 1
	s.logger.Debug("crash reporter client connected")

	decoder := codec.NewDecoder(conn)
	encoder := codec.NewEncoder(conn)
	for {
		conn.SetReadDeadline(time.Now().Add(staleTimeout))
		if ctx.Err() != nil {
			return StopCancelled, nil
		}
		var frame Frame
		if err := decoder.Decode(&frame); err != nil {
			if ctx.Err() != nil {
				return StopCancelled, nil
			}
			if netutil.IsTimeout(err) {
				s.logger.Info("crash reporter client went stale", "timeout", staleTimeout)
				return StopStale, nil
			}
			if !netutil.IsExpectedCloseError(err) {
				s.logger.Warn("crash reporter connection failed", "error", err)
			}
			if handler.OnClientDisconnected(clientID) == Exit {
				return StopDisconnected, nil
			}
			select {
			case <-ctx.Done():
				return StopCancelled, nil
			case <-time.After(staleTimeout):
				return StopStale, nil
			}
		}

		switch frame.Type {
		case FramePing:
			s.reply(conn, encoder, Frame{Type: FramePong})
		case FrameMessage:
			handler.OnMessage(frame.Kind, frame.Payload)
		case FrameDump:
			binary, dumpErr := s.WriteDump(handler, frame.Crash)
			ack := Frame{Type: FrameDumpAck, OK: dumpErr == nil}
			if dumpErr != nil {
				ack.Error = dumpErr.Error()
			}
			s.reply(conn, encoder, ack)
			if handler.OnDumpCreated(binary, dumpErr) == Exit {
				return StopDump, nil
			}
		default:
			s.logger.Debug("ignoring unexpected frame", "type", frame.Type)
		}
	}
}

// accept waits for the one allowed client. Connections from any other
// process are closed and the wait continues. The listener is closed
// once the client is accepted.
func (s *Server) accept(ctx context.Context, staleTimeout time.Duration) (*net.UnixConn, StopReason, error) {
	s.listener.SetDeadline(time.Now().Add(staleTimeout))
	for {
		conn, err := s.listener.AcceptUnix()
		if err != nil {
			if ctx.Err() != nil {
				return nil, StopCancelled, nil
			}
			if netutil.IsTimeout(err) {
				s.logger.Info("no crash reporter client connected", "timeout", staleTimeout)
				return nil, StopStale, nil
			}
			return nil, 0, fmt.Errorf("accepting on %s: %w", s.name, err)
		}

		if s.options.ExpectedPeer != 0 {
			pid, err := peerPID(conn)
			switch {
			case errors.Is(err, errPeerCredentialsUnsupported):
			case err != nil:
				s.logger.Warn("rejecting client with unreadable credentials", "error", err)
				conn.Close()
				continue
			case pid != s.options.ExpectedPeer:
				s.logger.Warn("rejecting client from unexpected process",
					"pid", pid, "expected_pid", s.options.ExpectedPeer)
				conn.Close()
				continue
			}
		}

		s.listener.Close()
		s.mu.Lock()
		s.conn = conn
		s.mu.Unlock()
		if ctx.Err() != nil {
			conn.Close()
			return nil, StopCancelled, nil
		}
		return conn, 0, nil
	}
}

// WriteDump builds a dump of crash into a file from the handler and
// returns it. The returned DumpBinary is non-nil whenever a file was
// created.
func (s *Server) WriteDump(handler Handler, crash *crashtrap.Context) (*DumpBinary, error) {
	file, path, err := handler.CreateDumpFile()
	if err != nil {
		return nil, fmt.Errorf("creating dump file: %w", err)
	}
	binary := &DumpBinary{File: file, Path: path}

	data, err := minidump.Build(crash, minidump.BuildOptions{
		Compression:    s.options.Compression,
		CaptureProcess: s.options.CaptureProcess,
	})
	if err != nil {
		return binary, fmt.Errorf("building dump: %w", err)
	}
	if _, err := file.Write(data); err != nil {
		return binary, fmt.Errorf("writing dump %s: %w", path, err)
	}
	if s.options.KeepContents {
		binary.Contents = data
	}
	s.logger.Info("crash dump written", "path", path, "size", len(data), "reason", crash.Reason)
	return binary, nil
}

func (s *Server) reply(conn *net.UnixConn, encoder *codec.Encoder, frame Frame) {
	conn.SetWriteDeadline(time.Now().Add(AckTimeout))
	if err := encoder.Encode(frame); err != nil {
		s.logger.Debug("failed to write reply", "type", frame.Type, "error", err)
	}
}
