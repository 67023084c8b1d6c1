// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package minidump

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/crashwatch/lib/codec"
)

// Signature is the first four bytes of every dump.
const Signature = "MDMP"

// Version is the header version field: the minidump magic in the low
// half and the crashwatch format revision in the high half.
const Version uint32 = 0xA793 | 1<<16

const versionMagicMask = 0xFFFF

// FlagCBORStreams marks dumps whose stream payloads are CBOR. Always
// set by this package.
const FlagCBORStreams uint64 = 1

const (
	headerSize         = 32
	directoryEntrySize = 20
)

// StreamType identifies a stream. Values below 0x10000 follow the
// minidump stream numbering; 0x4767xxxx follow Breakpad's Linux
// streams; 0x4357xxxx are crashwatch's own.
type StreamType uint32

const (
	StreamThreadList      StreamType = 3
	StreamModuleList      StreamType = 4
	StreamSystemInfo      StreamType = 7
	StreamLinuxProcStatus StreamType = 0x47670004
	StreamLinuxCmdLine    StreamType = 0x47670006
	StreamLinuxMaps       StreamType = 0x47670009
	StreamCrashInfo       StreamType = 0x43570001
	StreamDigest          StreamType = 0x43570002
)

func (t StreamType) String() string {
	switch t {
	case StreamThreadList:
		return "thread_list"
	case StreamModuleList:
		return "module_list"
	case StreamSystemInfo:
		return "system_info"
	case StreamLinuxProcStatus:
		return "linux_proc_status"
	case StreamLinuxCmdLine:
		return "linux_cmd_line"
	case StreamLinuxMaps:
		return "linux_maps"
	case StreamCrashInfo:
		return "crash_info"
	case StreamDigest:
		return "digest"
	default:
		return fmt.Sprintf("stream(0x%08x)", uint32(t))
	}
}

var (
	// ErrTruncated means the data ends before a structure it declares.
	ErrTruncated = errors.New("minidump: truncated")

	// ErrBadSignature means the data does not start with "MDMP".
	ErrBadSignature = errors.New("minidump: bad signature")

	// ErrUnsupportedVersion means the header version magic is wrong.
	ErrUnsupportedVersion = errors.New("minidump: unsupported version")

	// ErrDigestMismatch means the stored digest does not match the
	// streams, or the header checksum does not match the digest.
	ErrDigestMismatch = errors.New("minidump: digest mismatch")

	// ErrStreamNotFound is returned by Dump.Decode for absent streams.
	ErrStreamNotFound = errors.New("minidump: stream not found")

	// ErrStreamTooLarge means a stream's uncompressed size exceeds
	// MaxStreamSize.
	ErrStreamTooLarge = errors.New("minidump: stream too large")
)

// MaxStreamSize bounds the uncompressed size of a single stream. Read
// rejects larger declared sizes before allocating.
const MaxStreamSize = 64 << 20

// digestKey separates dump digests from any other BLAKE3 use of the
// same bytes. ASCII "crashwatch.minidump.digest", zero padded.
var digestKey = [32]byte{
	'c', 'r', 'a', 's', 'h', 'w', 'a', 't', 'c', 'h', '.',
	'm', 'i', 'n', 'i', 'd', 'u', 'm', 'p', '.',
	'd', 'i', 'g', 'e', 's', 't',
}

// Stream is one decoded stream. Data is the uncompressed CBOR payload.
type Stream struct {
	Type        StreamType
	Compression Compression
	StoredSize  int
	Data        []byte
}

type pendingStream struct {
	streamType  StreamType
	compression Compression
	rawSize     int
	stored      []byte
}

// Writer accumulates streams and lays them out into a dump.
type Writer struct {
	compression Compression
	streams     []pendingStream
}

// NewWriter returns a Writer that compresses every stream with
// compression, falling back to storing a stream uncompressed when
// compression would not shrink it.
func NewWriter(compression Compression) *Writer {
	return &Writer{compression: compression}
}

// Add encodes value as CBOR and appends it as a stream of type t.
func (w *Writer) Add(t StreamType, value any) error {
	if t == StreamDigest {
		return fmt.Errorf("minidump: the digest stream is added by Bytes")
	}
	raw, err := codec.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %v stream: %w", t, err)
	}
	if len(raw) > MaxStreamSize {
		return fmt.Errorf("%w: %v stream is %d bytes", ErrStreamTooLarge, t, len(raw))
	}

	stream := pendingStream{streamType: t, compression: w.compression, rawSize: len(raw)}
	stream.stored, err = compress(raw, w.compression)
	if errors.Is(err, errIncompressible) {
		stream.compression = CompressionNone
		stream.stored = raw
	} else if err != nil {
		return fmt.Errorf("compressing %v stream: %w", t, err)
	}
	w.streams = append(w.streams, stream)
	return nil
}

// Bytes lays out the header, directory and streams, appending the
// digest stream. timestamp is stored in the header.
func (w *Writer) Bytes(timestamp time.Time) ([]byte, error) {
	digest := digestStreams(w.streams)
	digestPayload, err := codec.Marshal(digest[:])
	if err != nil {
		return nil, fmt.Errorf("encoding digest stream: %w", err)
	}
	streams := append(w.streams[:len(w.streams):len(w.streams)], pendingStream{
		streamType: StreamDigest,
		rawSize:    len(digestPayload),
		stored:     digestPayload,
	})

	total := headerSize + directoryEntrySize*len(streams)
	for _, stream := range streams {
		total += len(stream.stored)
	}
	out := make([]byte, total)

	copy(out[0:4], Signature)
	binary.LittleEndian.PutUint32(out[4:8], Version)
	binary.LittleEndian.PutUint32(out[8:12], uint32(len(streams)))
	binary.LittleEndian.PutUint32(out[12:16], headerSize)
	binary.LittleEndian.PutUint32(out[16:20], binary.LittleEndian.Uint32(digest[:4]))
	binary.LittleEndian.PutUint32(out[20:24], uint32(timestamp.Unix()))
	binary.LittleEndian.PutUint64(out[24:32], FlagCBORStreams)

	rva := headerSize + directoryEntrySize*len(streams)
	for i, stream := range streams {
		entry := out[headerSize+i*directoryEntrySize:]
		binary.LittleEndian.PutUint32(entry[0:4], uint32(stream.streamType))
		binary.LittleEndian.PutUint32(entry[4:8], uint32(len(stream.stored)))
		binary.LittleEndian.PutUint32(entry[8:12], uint32(rva))
		entry[12] = byte(stream.compression)
		binary.LittleEndian.PutUint32(entry[16:20], uint32(stream.rawSize))
		copy(out[rva:], stream.stored)
		rva += len(stream.stored)
	}
	return out, nil
}

func digestStreams(streams []pendingStream) [32]byte {
	hasher, err := blake3.NewKeyed(digestKey[:])
	if err != nil {
		panic("minidump: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	var prefix [9]byte
	for _, stream := range streams {
		binary.LittleEndian.PutUint32(prefix[0:4], uint32(stream.streamType))
		prefix[4] = byte(stream.compression)
		binary.LittleEndian.PutUint32(prefix[5:9], uint32(stream.rawSize))
		hasher.Write(prefix[:])
		hasher.Write(stream.stored)
	}
	var digest [32]byte
	copy(digest[:], hasher.Sum(nil))
	return digest
}

// Dump is a parsed dump file.
type Dump struct {
	Version   uint32
	Timestamp time.Time
	Flags     uint64
	Checksum  uint32
	Streams   []Stream

	// Digest is the verified BLAKE3 digest. Zero when the dump has no
	// digest stream.
	Digest [32]byte
}

// Read parses and verifies a dump.
func Read(data []byte) (*Dump, error) {
	if len(data) < 4 {
		return nil, ErrTruncated
	}
	if string(data[0:4]) != Signature {
		return nil, ErrBadSignature
	}
	if len(data) < headerSize {
		return nil, ErrTruncated
	}

	dump := &Dump{
		Version:   binary.LittleEndian.Uint32(data[4:8]),
		Checksum:  binary.LittleEndian.Uint32(data[16:20]),
		Timestamp: time.Unix(int64(binary.LittleEndian.Uint32(data[20:24])), 0).UTC(),
		Flags:     binary.LittleEndian.Uint64(data[24:32]),
	}
	if dump.Version&versionMagicMask != Version&versionMagicMask {
		return nil, fmt.Errorf("%w: 0x%08x", ErrUnsupportedVersion, dump.Version)
	}

	count := int(binary.LittleEndian.Uint32(data[8:12]))
	directoryRVA := int(binary.LittleEndian.Uint32(data[12:16]))
	if count > (len(data)-headerSize)/directoryEntrySize || directoryRVA+count*directoryEntrySize > len(data) {
		return nil, fmt.Errorf("%w: directory of %d streams at %d", ErrTruncated, count, directoryRVA)
	}

	var pending []pendingStream
	for i := range count {
		entry := data[directoryRVA+i*directoryEntrySize:]
		stream := pendingStream{
			streamType:  StreamType(binary.LittleEndian.Uint32(entry[0:4])),
			compression: Compression(entry[12]),
			rawSize:     int(binary.LittleEndian.Uint32(entry[16:20])),
		}
		size := int(binary.LittleEndian.Uint32(entry[4:8]))
		rva := int(binary.LittleEndian.Uint32(entry[8:12]))
		if rva < 0 || size < 0 || rva+size > len(data) {
			return nil, fmt.Errorf("%w: %v stream at %d+%d", ErrTruncated, stream.streamType, rva, size)
		}
		stream.stored = data[rva : rva+size]
		if stream.rawSize < 0 || stream.rawSize > MaxStreamSize {
			return nil, fmt.Errorf("%w: %v stream declares %d bytes", ErrStreamTooLarge, stream.streamType, stream.rawSize)
		}

		raw, err := decompress(stream.stored, stream.compression, stream.rawSize)
		if err != nil {
			return nil, fmt.Errorf("%v stream: %w", stream.streamType, err)
		}
		dump.Streams = append(dump.Streams, Stream{
			Type:        stream.streamType,
			Compression: stream.compression,
			StoredSize:  size,
			Data:        raw,
		})
		pending = append(pending, stream)
	}

	if last := len(pending) - 1; last >= 0 && pending[last].streamType == StreamDigest {
		var stored []byte
		if err := codec.Unmarshal(dump.Streams[last].Data, &stored); err != nil || len(stored) != 32 {
			return nil, fmt.Errorf("%w: malformed digest stream", ErrDigestMismatch)
		}
		computed := digestStreams(pending[:last])
		if string(stored) != string(computed[:]) {
			return nil, ErrDigestMismatch
		}
		if dump.Checksum != binary.LittleEndian.Uint32(computed[:4]) {
			return nil, fmt.Errorf("%w: header checksum", ErrDigestMismatch)
		}
		dump.Digest = computed
	}

	return dump, nil
}

// ReadFile reads and parses the dump at path.
func ReadFile(path string) (*Dump, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	dump, err := Read(data)
	if err != nil {
		return nil, fmt.Errorf("parsing dump %s: %w", path, err)
	}
	return dump, nil
}

// Stream returns the first stream of type t.
func (d *Dump) Stream(t StreamType) (Stream, bool) {
	for _, stream := range d.Streams {
		if stream.Type == t {
			return stream, true
		}
	}
	return Stream{}, false
}

// Decode decodes the first stream of type t into v.
func (d *Dump) Decode(t StreamType, v any) error {
	stream, ok := d.Stream(t)
	if !ok {
		return fmt.Errorf("%w: %v", ErrStreamNotFound, t)
	}
	if err := codec.Unmarshal(stream.Data, v); err != nil {
		return fmt.Errorf("decoding %v stream: %w", t, err)
	}
	return nil
}
