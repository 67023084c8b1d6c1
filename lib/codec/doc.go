// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides crashwatch's single CBOR configuration.
//
// CBOR is used for everything crashwatch writes that is not meant for
// humans: the frames exchanged between the monitored process and its
// supervisor over the local socket, and the stream payloads inside a
// dump file. Keeping the encoder and decoder modes in one place means
// the supervisor and the dump reader decode exactly what the client
// and the dump writer encoded.
//
// For buffers (dump streams):
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// For streams (the supervisor socket):
//
//	encoder := codec.NewEncoder(conn)
//	decoder := codec.NewDecoder(conn)
//
// CBOR values are self-delimiting, so frames written back to back on a
// stream need no additional length prefix.
//
// Types in this module use `cbor` struct tags only. None of them are
// ever rendered as JSON.
package codec
