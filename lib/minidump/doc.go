// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package minidump writes and reads crashwatch dump files.
//
// A dump is a small container modeled on the Windows minidump layout:
// a fixed 32-byte header starting with the ASCII signature "MDMP", a
// stream directory, and a sequence of typed streams. Stream payloads
// are CBOR (see lib/codec) and may be compressed individually with
// zstd or LZ4. The last stream is a BLAKE3 digest over every preceding
// stream's stored bytes; the header checksum holds its first four
// bytes so a truncated or corrupted dump is detected on [Read].
//
// Layout (little-endian):
//
//	offset 0   header     "MDMP" | version | streams | directory RVA |
//	                      checksum | timestamp | flags (u64)
//	offset 32  directory  streams × 20 bytes: type | stored size | RVA |
//	                      compression (u8) + 3 pad | raw size
//	           data       stream payloads, in directory order
//
// [Build] assembles the standard stream set for one crash: the crash
// description, goroutine list, system information, module list and,
// on Linux, the crashed process's /proc status, maps and command line.
package minidump
