// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

type sampleFrame struct {
	Type    uint8  `cbor:"type"`
	Kind    uint32 `cbor:"kind,omitempty"`
	Payload []byte `cbor:"payload,omitempty"`
}

func TestMarshalDeterministic(t *testing.T) {
	frame := sampleFrame{Type: 3, Kind: 7, Payload: []byte{1, 2, 3}}

	first, err := Marshal(frame)
	if err != nil {
		t.Fatalf("first Marshal: %v", err)
	}
	second, err := Marshal(frame)
	if err != nil {
		t.Fatalf("second Marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("deterministic encoding violated: %x != %x", first, second)
	}
}

func TestMapKeysSorted(t *testing.T) {
	// Core Deterministic Encoding sorts map keys, so insertion order
	// must not leak into the encoded bytes.
	a := map[string]int{"zeta": 1, "alpha": 2, "mid": 3}
	b := map[string]int{"mid": 3, "alpha": 2, "zeta": 1}

	encodedA, err := Marshal(a)
	if err != nil {
		t.Fatalf("Marshal a: %v", err)
	}
	encodedB, err := Marshal(b)
	if err != nil {
		t.Fatalf("Marshal b: %v", err)
	}
	if !bytes.Equal(encodedA, encodedB) {
		t.Errorf("map encoding depends on insertion order: %x vs %x", encodedA, encodedB)
	}
}

func TestStreamFramesBackToBack(t *testing.T) {
	frames := []sampleFrame{
		{Type: 1},
		{Type: 3, Kind: 7, Payload: []byte{1, 2, 3}},
		{Type: 3, Kind: 8, Payload: []byte{}},
		{Type: 4},
	}

	var buffer bytes.Buffer
	encoder := NewEncoder(&buffer)
	for _, frame := range frames {
		if err := encoder.Encode(frame); err != nil {
			t.Fatalf("Encode: %v", err)
		}
	}

	decoder := NewDecoder(&buffer)
	for i, want := range frames {
		var got sampleFrame
		if err := decoder.Decode(&got); err != nil {
			t.Fatalf("Decode frame %d: %v", i, err)
		}
		if got.Type != want.Type || got.Kind != want.Kind || !bytes.Equal(got.Payload, want.Payload) {
			t.Errorf("frame %d: got %+v, want %+v", i, got, want)
		}
	}

	var extra sampleFrame
	if err := decoder.Decode(&extra); !errors.Is(err, io.EOF) {
		t.Errorf("Decode past end = %v, want io.EOF", err)
	}
}

func TestAnyMapDecodesAsStringKeys(t *testing.T) {
	data, err := Marshal(map[string]any{"signal": "SIGSEGV", "pid": 42})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded any
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	asMap, ok := decoded.(map[string]any)
	if !ok {
		t.Fatalf("decoded type = %T, want map[string]any", decoded)
	}
	if asMap["signal"] != "SIGSEGV" {
		t.Errorf("signal = %v, want SIGSEGV", asMap["signal"])
	}
}

func TestUnknownFieldsIgnored(t *testing.T) {
	data, err := Marshal(map[string]any{"type": 1, "future_field": "x"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var frame sampleFrame
	if err := Unmarshal(data, &frame); err != nil {
		t.Fatalf("Unmarshal with unknown field: %v", err)
	}
	if frame.Type != 1 {
		t.Errorf("Type = %d, want 1", frame.Type)
	}
}

func TestDiagnose(t *testing.T) {
	data, err := Marshal(sampleFrame{Type: 3, Kind: 7})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	notation, err := Diagnose(data)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	if !strings.Contains(notation, `"kind": 7`) {
		t.Errorf("Diagnose = %q, want it to contain %q", notation, `"kind": 7`)
	}
}
