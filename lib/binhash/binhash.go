// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package binhash

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

// Size is the length of a digest in bytes.
const Size = 32

// HashFile computes the BLAKE3 digest of the file at path, streaming
// it through the hasher so memory use does not grow with file size.
func HashFile(path string) ([Size]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return [Size]byte{}, fmt.Errorf("opening %s for hashing: %w", path, err)
	}
	defer file.Close()

	hasher := blake3.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return [Size]byte{}, fmt.Errorf("hashing %s: %w", path, err)
	}

	var digest [Size]byte
	copy(digest[:], hasher.Sum(nil))
	return digest, nil
}

// HashExecutable hashes the running executable. It returns the
// resolved path along with the digest.
func HashExecutable() (string, [Size]byte, error) {
	path, err := os.Executable()
	if err != nil {
		return "", [Size]byte{}, fmt.Errorf("locating executable: %w", err)
	}
	digest, err := HashFile(path)
	return path, digest, err
}

// FormatDigest returns the lowercase hex encoding of digest.
func FormatDigest(digest [Size]byte) string {
	return hex.EncodeToString(digest[:])
}

// ParseDigest parses the output of FormatDigest.
func ParseDigest(hexString string) ([Size]byte, error) {
	var digest [Size]byte
	decoded, err := hex.DecodeString(hexString)
	if err != nil {
		return digest, fmt.Errorf("parsing hash digest: %w", err)
	}
	if len(decoded) != Size {
		return digest, fmt.Errorf("hash digest is %d bytes, want %d", len(decoded), Size)
	}
	copy(digest[:], decoded)
	return digest, nil
}
