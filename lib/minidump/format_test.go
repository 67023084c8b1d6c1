// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package minidump

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type testPayload struct {
	Name  string   `cbor:"name"`
	Lines []string `cbor:"lines"`
}

func writeTestDump(t *testing.T, compression Compression) []byte {
	t.Helper()
	writer := NewWriter(compression)
	payload := testPayload{Name: "main", Lines: []string{strings.Repeat("frame ", 100), "tail"}}
	if err := writer.Add(StreamCrashInfo, payload); err != nil {
		t.Fatalf("Add(crash_info) failed: %v", err)
	}
	if err := writer.Add(StreamLinuxCmdLine, "/usr/bin/app --flag"); err != nil {
		t.Fatalf("Add(linux_cmd_line) failed: %v", err)
	}
	data, err := writer.Bytes(time.Unix(1700000000, 0))
	if err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}
	return data
}

func TestWriterHeader(t *testing.T) {
	data := writeTestDump(t, CompressionNone)

	if got := string(data[:4]); got != Signature {
		t.Errorf("signature = %q, want %q", got, Signature)
	}
	if got := binary.LittleEndian.Uint32(data[4:8]); got != Version {
		t.Errorf("version = 0x%08x, want 0x%08x", got, Version)
	}
	if got := binary.LittleEndian.Uint32(data[8:12]); got != 3 {
		t.Errorf("stream count = %d, want 3 (two streams plus digest)", got)
	}
	if got := binary.LittleEndian.Uint32(data[12:16]); got != headerSize {
		t.Errorf("directory RVA = %d, want %d", got, headerSize)
	}
	if got := binary.LittleEndian.Uint32(data[20:24]); got != 1700000000 {
		t.Errorf("timestamp = %d, want 1700000000", got)
	}
	if got := binary.LittleEndian.Uint64(data[24:32]); got != FlagCBORStreams {
		t.Errorf("flags = %d, want %d", got, FlagCBORStreams)
	}
}

func TestReadRoundTrip(t *testing.T) {
	for _, compression := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd} {
		t.Run(compression.String(), func(t *testing.T) {
			dump, err := Read(writeTestDump(t, compression))
			if err != nil {
				t.Fatalf("Read failed: %v", err)
			}
			if len(dump.Streams) != 3 {
				t.Fatalf("got %d streams, want 3", len(dump.Streams))
			}
			if last := dump.Streams[2]; last.Type != StreamDigest {
				t.Errorf("last stream = %v, want digest", last.Type)
			}
			if dump.Digest == ([32]byte{}) {
				t.Error("Digest is zero after a successful Read")
			}
			if !dump.Timestamp.Equal(time.Unix(1700000000, 0)) {
				t.Errorf("Timestamp = %v", dump.Timestamp)
			}

			var payload testPayload
			if err := dump.Decode(StreamCrashInfo, &payload); err != nil {
				t.Fatalf("Decode(crash_info) failed: %v", err)
			}
			if payload.Name != "main" || len(payload.Lines) != 2 || payload.Lines[1] != "tail" {
				t.Errorf("payload = %+v", payload)
			}

			var cmdline string
			if err := dump.Decode(StreamLinuxCmdLine, &cmdline); err != nil {
				t.Fatalf("Decode(linux_cmd_line) failed: %v", err)
			}
			if cmdline != "/usr/bin/app --flag" {
				t.Errorf("cmdline = %q", cmdline)
			}
		})
	}
}

func TestIncompressibleStreamStoredRaw(t *testing.T) {
	writer := NewWriter(CompressionZstd)
	if err := writer.Add(StreamLinuxCmdLine, "x"); err != nil {
		t.Fatal(err)
	}
	data, err := writer.Bytes(time.Now())
	if err != nil {
		t.Fatal(err)
	}
	dump, err := Read(data)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	stream, ok := dump.Stream(StreamLinuxCmdLine)
	if !ok {
		t.Fatal("cmdline stream missing")
	}
	if stream.Compression != CompressionNone {
		t.Errorf("compression = %v, want none for a one-byte payload", stream.Compression)
	}
}

func TestReadErrors(t *testing.T) {
	valid := writeTestDump(t, CompressionNone)

	tests := []struct {
		name   string
		mutate func([]byte) []byte
		want   error
	}{
		{"empty", func([]byte) []byte { return nil }, ErrTruncated},
		{"signature", func(d []byte) []byte { d[0] = 'X'; return d }, ErrBadSignature},
		{"short header", func(d []byte) []byte { return d[:20] }, ErrTruncated},
		{"version", func(d []byte) []byte { d[4] = 0; return d }, ErrUnsupportedVersion},
		{"directory past end", func(d []byte) []byte {
			binary.LittleEndian.PutUint32(d[8:12], 1000)
			return d
		}, ErrTruncated},
		{"stream past end", func(d []byte) []byte { return d[:len(d)-5] }, ErrTruncated},
		{"payload byte", func(d []byte) []byte {
			rva := binary.LittleEndian.Uint32(d[headerSize+8 : headerSize+12])
			d[rva+3] ^= 0x01
			return d
		}, ErrDigestMismatch},
		{"checksum", func(d []byte) []byte { d[16] ^= 0xFF; return d }, ErrDigestMismatch},
		{"raw size over limit", func(d []byte) []byte {
			binary.LittleEndian.PutUint32(d[headerSize+16:headerSize+20], 0xF0000000)
			return d
		}, ErrStreamTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := tt.mutate(append([]byte(nil), valid...))
			_, err := Read(data)
			if !errors.Is(err, tt.want) {
				t.Errorf("Read error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestReadRejectsOversizedCompressedStream(t *testing.T) {
	for _, compression := range []Compression{CompressionLZ4, CompressionZstd} {
		t.Run(compression.String(), func(t *testing.T) {
			data := writeTestDump(t, compression)
			if got := Compression(data[headerSize+12]); got != compression {
				t.Fatalf("first stream compression = %v, want %v", got, compression)
			}
			binary.LittleEndian.PutUint32(data[headerSize+16:headerSize+20], MaxStreamSize+1)
			_, err := Read(data)
			if !errors.Is(err, ErrStreamTooLarge) {
				t.Errorf("Read error = %v, want ErrStreamTooLarge", err)
			}
		})
	}
}

func TestAddRejectsOversizedStream(t *testing.T) {
	writer := NewWriter(CompressionNone)
	err := writer.Add(StreamLinuxMaps, strings.Repeat("x", MaxStreamSize))
	if !errors.Is(err, ErrStreamTooLarge) {
		t.Errorf("Add error = %v, want ErrStreamTooLarge", err)
	}
}

func TestDecodeMissingStream(t *testing.T) {
	dump, err := Read(writeTestDump(t, CompressionNone))
	if err != nil {
		t.Fatal(err)
	}
	var value any
	if err := dump.Decode(StreamThreadList, &value); !errors.Is(err, ErrStreamNotFound) {
		t.Errorf("Decode(thread_list) error = %v, want ErrStreamNotFound", err)
	}
}

func TestAddRejectsDigest(t *testing.T) {
	if err := NewWriter(CompressionNone).Add(StreamDigest, []byte{1}); err == nil {
		t.Error("Add(digest) should fail")
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crash.dmp")
	if err := os.WriteFile(path, writeTestDump(t, CompressionLZ4), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadFile(path); err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	if err := os.WriteFile(path, []byte("not a dump"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := ReadFile(path)
	if !errors.Is(err, ErrBadSignature) {
		t.Errorf("ReadFile error = %v, want ErrBadSignature", err)
	}
	if err != nil && !strings.Contains(err.Error(), path) {
		t.Errorf("error %q does not name the file", err)
	}
}

func TestStreamTypeString(t *testing.T) {
	if got := StreamLinuxMaps.String(); got != "linux_maps" {
		t.Errorf("StreamLinuxMaps.String() = %q", got)
	}
	if got := StreamType(0x1234).String(); got != "stream(0x00001234)" {
		t.Errorf("StreamType(0x1234).String() = %q", got)
	}
}
