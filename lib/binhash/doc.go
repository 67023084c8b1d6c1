// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package binhash identifies executables by content.
//
// A dump records the digest of the binary that wrote it so a reader
// can match the dump against the exact build it came from, even when
// two builds share a version string. Digests are unkeyed BLAKE3 and
// travel as 64-character lowercase hex ([FormatDigest],
// [ParseDigest]).
package binhash
