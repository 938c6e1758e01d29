/*
 * Copyright (c) 2026 Firefly Software Solutions Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"strings"
	"testing"
)

func TestScalarRoundTrip(t *testing.T) {
	for _, order := range []binary.ByteOrder{binary.BigEndian, binary.LittleEndian} {
		bb := NewByteBuffer(order, 0)
		bb.PutShort(-12345)
		bb.PutInt(math.MinInt32)
		bb.PutLong(math.MaxInt64)
		bb.PutBool(true)
		bb.PutBool(false)

		rd := NewByteBuffer(order, 0)
		rd.Wrap(bb.Bytes())

		if v, err := rd.GetShort(); err != nil || v != -12345 {
			t.Errorf("GetShort() = %d, %v; want -12345", v, err)
		}
		if v, err := rd.GetInt(); err != nil || v != math.MinInt32 {
			t.Errorf("GetInt() = %d, %v; want MinInt32", v, err)
		}
		if v, err := rd.GetLong(); err != nil || v != math.MaxInt64 {
			t.Errorf("GetLong() = %d, %v; want MaxInt64", v, err)
		}
		if v, err := rd.GetBool(); err != nil || !v {
			t.Errorf("GetBool() = %v, %v; want true", v, err)
		}
		if v, err := rd.GetBool(); err != nil || v {
			t.Errorf("GetBool() = %v, %v; want false", v, err)
		}
		if rd.Remaining() != 0 {
			t.Errorf("Expected buffer fully consumed, %d bytes left", rd.Remaining())
		}
	}
}

func TestByteOrderOnWire(t *testing.T) {
	big := NewByteBuffer(binary.BigEndian, 0)
	big.PutInt(1)
	if !bytes.Equal(big.Bytes(), []byte{0, 0, 0, 1}) {
		t.Errorf("big-endian PutInt(1) = %v", big.Bytes())
	}

	little := NewByteBuffer(binary.LittleEndian, 0)
	little.PutInt(1)
	if !bytes.Equal(little.Bytes(), []byte{1, 0, 0, 0}) {
		t.Errorf("little-endian PutInt(1) = %v", little.Bytes())
	}
}

func TestParseEndian(t *testing.T) {
	if ParseEndian("big") != binary.BigEndian {
		t.Error("Expected big-endian for \"big\"")
	}
	if ParseEndian("little") != binary.LittleEndian {
		t.Error("Expected little-endian for \"little\"")
	}
	if ParseEndian("") != binary.LittleEndian {
		t.Error("Expected little-endian for empty string")
	}
}

func TestDefaultMultiplier(t *testing.T) {
	if m := NewByteBuffer(nil, 0).Multiplier(); m != DefaultMultiplier {
		t.Errorf("Multiplier() = %v, want %v", m, DefaultMultiplier)
	}
	if o := NewByteBuffer(nil, 0).Order(); o != binary.BigEndian {
		t.Errorf("Order() = %v, want big-endian", o)
	}
}

func TestFloatFixedPoint(t *testing.T) {
	bb := NewByteBuffer(binary.BigEndian, 10000)
	if err := bb.PutFloat(3.14159); err != nil {
		t.Fatalf("PutFloat() error: %v", err)
	}

	if got := binary.BigEndian.Uint64(bb.Bytes()); got != 31415 {
		t.Errorf("Stored integer = %d, want 31415", got)
	}

	rd := NewByteBuffer(binary.BigEndian, 10000)
	rd.Wrap(bb.Bytes())
	v, err := rd.GetFloat()
	if err != nil {
		t.Fatalf("GetFloat() error: %v", err)
	}
	if v != 3.1415 {
		t.Errorf("GetFloat() = %v, want 3.1415", v)
	}
}

func TestFloatRoundTrip(t *testing.T) {
	values := []float64{0, 1, 0.0001, 12.5, 99999.9999, -2.5, -0.0001}

	for _, want := range values {
		bb := NewByteBuffer(binary.BigEndian, 0)
		if err := bb.PutFloat(want); err != nil {
			t.Fatalf("PutFloat(%v) error: %v", want, err)
		}
		rd := NewByteBuffer(binary.BigEndian, 0)
		rd.Wrap(bb.Bytes())
		got, err := rd.GetFloat()
		if err != nil {
			t.Fatalf("GetFloat() error: %v", err)
		}
		if math.Abs(got-want) > 2.0/DefaultMultiplier {
			t.Errorf("float round trip: got %v, want %v", got, want)
		}
	}
}

func TestFloatRejectsOutOfRange(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), 1e300, -1e300} {
		bb := NewByteBuffer(binary.BigEndian, 0)
		if err := bb.PutFloat(v); !errors.Is(err, ErrFloatRange) {
			t.Errorf("PutFloat(%v) error = %v, want ErrFloatRange", v, err)
		}
		if bb.Len() != 0 {
			t.Errorf("PutFloat(%v) wrote %d bytes on error", v, bb.Len())
		}
	}
}

func TestStringRoundTrip(t *testing.T) {
	lengths := []int{1, 127, 128, 32767, 32768, 100000}

	for _, n := range lengths {
		s := strings.Repeat("a", n)
		bb := NewByteBuffer(binary.BigEndian, 0)
		bb.PutString(s)

		if tag := bb.Bytes()[0]; tag != StringTag(n) {
			t.Errorf("len %d: tag = %d, want %d", n, tag, StringTag(n))
		}

		rd := NewByteBuffer(binary.BigEndian, 0)
		rd.Wrap(bb.Bytes())
		got, err := rd.GetString()
		if err != nil {
			t.Fatalf("len %d: GetString() error: %v", n, err)
		}
		if got != s {
			t.Errorf("len %d: round trip mismatch (got %d bytes)", n, len(got))
		}
	}
}

func TestStringTagSelection(t *testing.T) {
	tests := []struct {
		n    int64
		want byte
	}{
		{1, TagUint8},
		{127, TagUint8},
		{128, TagUint16},
		{32767, TagUint16},
		{32768, TagUint32},
		{1<<31 - 1, TagUint32},
		{1 << 31, TagUint64},
	}

	for _, tt := range tests {
		if tt.n > math.MaxInt {
			continue // not representable on 32-bit targets
		}
		if got := StringTag(int(tt.n)); got != tt.want {
			t.Errorf("StringTag(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestStringLengthFieldWidth(t *testing.T) {
	bb := NewByteBuffer(binary.BigEndian, 0)
	bb.PutString(strings.Repeat("b", 200))

	// tag + uint16 length + payload
	if bb.Len() != 1+2+200 {
		t.Errorf("encoded length = %d, want %d", bb.Len(), 1+2+200)
	}
	if got := binary.BigEndian.Uint16(bb.Bytes()[1:3]); got != 200 {
		t.Errorf("length field = %d, want 200", got)
	}
}

func TestEmptyStringSentinel(t *testing.T) {
	bb := NewByteBuffer(binary.BigEndian, 0)
	bb.PutString("")

	if !bytes.Equal(bb.Bytes(), []byte{1, 1, 'X'}) {
		t.Errorf("empty string encoded as %v, want [1 1 88]", bb.Bytes())
	}

	rd := NewByteBuffer(binary.BigEndian, 0)
	rd.Wrap(bb.Bytes())
	got, err := rd.GetString()
	if err != nil {
		t.Fatalf("GetString() error: %v", err)
	}
	if got != "" {
		t.Errorf("GetString() = %q, want empty", got)
	}
}

func TestLiteralXDecodesAsEmpty(t *testing.T) {
	bb := NewByteBuffer(binary.BigEndian, 0)
	bb.PutString("X")

	rd := NewByteBuffer(binary.BigEndian, 0)
	rd.Wrap(bb.Bytes())
	got, err := rd.GetString()
	if err != nil {
		t.Fatalf("GetString() error: %v", err)
	}
	if got != "" {
		t.Errorf("GetString() = %q, want empty (sentinel collision)", got)
	}
}

func TestWideTagDecodes(t *testing.T) {
	data := []byte{TagUint64, 0, 0, 0, 0, 0, 0, 0, 3, 'a', 'b', 'c'}
	rd := NewByteBuffer(binary.BigEndian, 0)
	rd.Wrap(data)

	got, err := rd.GetString()
	if err != nil {
		t.Fatalf("GetString() error: %v", err)
	}
	if got != "abc" {
		t.Errorf("GetString() = %q, want abc", got)
	}
}

func TestStringDecodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   []byte
		wantErr error
	}{
		{"empty buffer", nil, ErrUnderflow},
		{"missing length", []byte{TagUint16, 0}, ErrUnderflow},
		{"short payload", []byte{TagUint8, 5, 'a', 'b'}, ErrUnderflow},
		{"huge length", []byte{TagUint64, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}, ErrUnderflow},
		{"bad tag", []byte{9, 1, 'a'}, ErrInvalidStringTag},
		{"invalid utf-8", []byte{TagUint8, 2, 0xC3, 0x28}, ErrInvalidUTF8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rd := NewByteBuffer(binary.BigEndian, 0)
			rd.Wrap(tt.input)
			if _, err := rd.GetString(); !errors.Is(err, tt.wantErr) {
				t.Errorf("GetString() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBlobRoundTrip(t *testing.T) {
	blobs := [][]byte{{}, {1, 2, 3}, bytes.Repeat([]byte{0xAB}, 70000)}

	for _, want := range blobs {
		bb := NewByteBuffer(binary.BigEndian, 0)
		bb.Put(want)

		if bb.Len() != 8+len(want) {
			t.Errorf("blob encoded length = %d, want %d", bb.Len(), 8+len(want))
		}

		rd := NewByteBuffer(binary.BigEndian, 0)
		rd.Wrap(bb.Bytes())
		got, err := rd.Get()
		if err != nil {
			t.Fatalf("Get() error: %v", err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("blob round trip mismatch: got %d bytes, want %d", len(got), len(want))
		}
	}
}

func TestBlobUnderflow(t *testing.T) {
	rd := NewByteBuffer(binary.BigEndian, 0)
	rd.Wrap([]byte{0, 0, 0, 0, 0, 0, 0, 10, 1, 2})
	if _, err := rd.Get(); !errors.Is(err, ErrUnderflow) {
		t.Errorf("Get() error = %v, want ErrUnderflow", err)
	}
}

func TestScalarUnderflow(t *testing.T) {
	rd := NewByteBuffer(binary.BigEndian, 0)
	rd.Wrap([]byte{0, 1})

	if _, err := rd.GetInt(); !errors.Is(err, ErrUnderflow) {
		t.Errorf("GetInt() error = %v, want ErrUnderflow", err)
	}
	// A failed read must not consume anything.
	if v, err := rd.GetShort(); err != nil || v != 1 {
		t.Errorf("GetShort() = %d, %v; want 1", v, err)
	}
	if _, err := rd.GetBool(); !errors.Is(err, ErrUnderflow) {
		t.Errorf("GetBool() error = %v, want ErrUnderflow", err)
	}
}

func BenchmarkPutString(b *testing.B) {
	bb := NewByteBuffer(binary.BigEndian, 0)
	for i := 0; i < b.N; i++ {
		bb.Wrap(bb.Bytes()[:0])
		bb.PutString("loggers")
	}
}
