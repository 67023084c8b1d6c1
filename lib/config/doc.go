// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads crashwatch settings from a file.
//
// A configuration file is optional. When the CRASHWATCH_CONFIG
// environment variable names one, [Load] reads it; [LoadFile] reads an
// explicit path (the --config flag of the crashwatch binaries). There
// is no search path and no per-field environment override, so the
// file named is the whole story.
//
// Two formats are accepted, chosen by extension: YAML (.yaml, .yml)
// and JSON with comments and trailing commas (.json, .jsonc). Fields
// left out of the file stay at their zero value, which callers read
// as "not configured" and leave their programmatic setting in place.
//
// Durations accept either Go duration strings ("5s", "250ms") or a
// bare integer number of milliseconds.
//
// Variable expansion is performed on crashes_dir after loading:
// ${HOME}, ${TMPDIR} and ${VAR:-default} patterns are expanded.
//
// This package depends on no other crashwatch packages.
package config
