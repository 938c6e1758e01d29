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

/*
Package codec implements the scalar and string encodings of the Brahmaputra
wire protocol.

ENCODINGS:
==========

	Short/Int/Long:  raw 16/32/64-bit two's-complement words
	Bool:            1 byte (0x01=true, 0x00=false)
	Float:           signed fixed point, int64(trunc(v * multiplier))
	Blob:            [uint64 length][raw bytes]
	String:          [uint8 tag][length, width picked by tag][UTF-8 bytes]

STRING TAGS:
============

	tag 1: uint8 length   (byte length < 128)
	tag 2: uint16 length  (byte length < 32768)
	tag 3: uint32 length  (byte length < 2^31)
	tag 4: uint64 length  (anything larger)

The empty string travels as tag 1, length 1, payload "X" and decodes back
to "". A one-byte "X" is therefore indistinguishable from "" on the wire.

All multi-byte words use the buffer's byte order. The protocol itself is
big-endian; little-endian exists for parity with older tooling.
*/
package codec

import (
	"encoding/binary"
	"errors"
	"math"
	"unicode/utf8"
)

// DefaultMultiplier is the fixed-point scale applied when none is set.
const DefaultMultiplier = 10000.0

// String length tags.
const (
	TagUint8  byte = 1
	TagUint16 byte = 2
	TagUint32 byte = 3
	TagUint64 byte = 4
)

// emptySentinel stands in for the empty string on the wire.
const emptySentinel = "X"

// Codec errors.
var (
	// ErrUnderflow means the buffer ended before the field did.
	ErrUnderflow = errors.New("codec: buffer underflow")

	// ErrInvalidUTF8 means a decoded string payload is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("codec: invalid utf-8 string")

	// ErrInvalidStringTag means the string tag byte is not 1..4.
	ErrInvalidStringTag = errors.New("codec: invalid string length tag")

	// ErrFloatRange means the scaled float does not fit a signed 64-bit word.
	ErrFloatRange = errors.New("codec: float out of fixed-point range")
)

// ByteBuffer is a growable byte sequence with a read cursor.
// A buffer is either built with Put* calls or wrapped over received bytes
// and consumed with Get* calls, in the order the fields were written.
// It is not safe for concurrent use.
type ByteBuffer struct {
	order      binary.ByteOrder
	multiplier float64
	buf        []byte
	pos        int
}

// NewByteBuffer creates an empty buffer. A nil order means big-endian and a
// zero multiplier means DefaultMultiplier.
func NewByteBuffer(order binary.ByteOrder, multiplier float64) *ByteBuffer {
	if order == nil {
		order = binary.BigEndian
	}
	if multiplier == 0 {
		multiplier = DefaultMultiplier
	}
	return &ByteBuffer{
		order:      order,
		multiplier: multiplier,
		buf:        make([]byte, 0, 64),
	}
}

// ParseEndian maps "big" to big-endian; everything else is little-endian.
func ParseEndian(s string) binary.ByteOrder {
	if s == "big" {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// Order returns the buffer's byte order.
func (b *ByteBuffer) Order() binary.ByteOrder { return b.order }

// Multiplier returns the fixed-point scale.
func (b *ByteBuffer) Multiplier() float64 { return b.multiplier }

// Wrap turns the buffer into a read cursor over data.
func (b *ByteBuffer) Wrap(data []byte) {
	b.buf = data
	b.pos = 0
}

// Bytes returns everything written so far.
func (b *ByteBuffer) Bytes() []byte {
	return b.buf
}

// Len returns the total number of bytes held.
func (b *ByteBuffer) Len() int {
	return len(b.buf)
}

// Remaining returns the number of unread bytes.
func (b *ByteBuffer) Remaining() int {
	return len(b.buf) - b.pos
}

// ---------------------------------------------------------------------------
// Writers
// ---------------------------------------------------------------------------

// PutByte appends one raw byte.
func (b *ByteBuffer) PutByte(v byte) {
	b.buf = append(b.buf, v)
}

// PutUint16 appends a 16-bit word.
func (b *ByteBuffer) PutUint16(v uint16) {
	var tmp [2]byte
	b.order.PutUint16(tmp[:], v)
	b.buf = append(b.buf, tmp[:]...)
}

// PutUint32 appends a 32-bit word.
func (b *ByteBuffer) PutUint32(v uint32) {
	var tmp [4]byte
	b.order.PutUint32(tmp[:], v)
	b.buf = append(b.buf, tmp[:]...)
}

// PutUint64 appends a 64-bit word.
func (b *ByteBuffer) PutUint64(v uint64) {
	var tmp [8]byte
	b.order.PutUint64(tmp[:], v)
	b.buf = append(b.buf, tmp[:]...)
}

// PutShort appends a signed 16-bit integer.
func (b *ByteBuffer) PutShort(v int16) {
	b.PutUint16(uint16(v))
}

// PutInt appends a signed 32-bit integer.
func (b *ByteBuffer) PutInt(v int32) {
	b.PutUint32(uint32(v))
}

// PutLong appends a signed 64-bit integer.
func (b *ByteBuffer) PutLong(v int64) {
	b.PutUint64(uint64(v))
}

// PutBool appends 1 for true and 0 for false.
func (b *ByteBuffer) PutBool(v bool) {
	if v {
		b.PutByte(1)
		return
	}
	b.PutByte(0)
}

// PutFloat appends v as a signed fixed-point word, truncated toward zero.
// Non-finite values and values whose scaled form overflows int64 are
// rejected and nothing is written.
func (b *ByteBuffer) PutFloat(v float64) error {
	scaled := v * b.multiplier
	if math.IsNaN(scaled) || scaled >= math.MaxInt64 || scaled < math.MinInt64 {
		return ErrFloatRange
	}
	b.PutLong(int64(scaled))
	return nil
}

// Put appends a blob: uint64 length followed by the raw bytes.
func (b *ByteBuffer) Put(data []byte) {
	b.PutUint64(uint64(len(data)))
	b.buf = append(b.buf, data...)
}

// PutString appends s with the narrowest length tag that fits.
func (b *ByteBuffer) PutString(s string) {
	n := len(s)
	switch {
	case n == 0:
		b.PutByte(TagUint8)
		b.PutByte(1)
		b.buf = append(b.buf, emptySentinel...)
		return
	case n < 1<<7:
		b.PutByte(TagUint8)
		b.PutByte(uint8(n))
	case n < 1<<15:
		b.PutByte(TagUint16)
		b.PutUint16(uint16(n))
	case uint64(n) < 1<<31:
		b.PutByte(TagUint32)
		b.PutUint32(uint32(n))
	default:
		b.PutByte(TagUint64)
		b.PutUint64(uint64(n))
	}
	b.buf = append(b.buf, s...)
}

// StringTag returns the tag PutString would use for a string of n bytes.
func StringTag(n int) byte {
	switch {
	case n < 1<<7:
		return TagUint8
	case n < 1<<15:
		return TagUint16
	case uint64(n) < 1<<31:
		return TagUint32
	default:
		return TagUint64
	}
}

// ---------------------------------------------------------------------------
// Readers
// ---------------------------------------------------------------------------

func (b *ByteBuffer) next(n int) ([]byte, error) {
	if n < 0 || n > b.Remaining() {
		return nil, ErrUnderflow
	}
	p := b.buf[b.pos : b.pos+n]
	b.pos += n
	return p, nil
}

// GetByte reads one raw byte.
func (b *ByteBuffer) GetByte() (byte, error) {
	p, err := b.next(1)
	if err != nil {
		return 0, err
	}
	return p[0], nil
}

// GetUint16 reads a 16-bit word.
func (b *ByteBuffer) GetUint16() (uint16, error) {
	p, err := b.next(2)
	if err != nil {
		return 0, err
	}
	return b.order.Uint16(p), nil
}

// GetUint32 reads a 32-bit word.
func (b *ByteBuffer) GetUint32() (uint32, error) {
	p, err := b.next(4)
	if err != nil {
		return 0, err
	}
	return b.order.Uint32(p), nil
}

// GetUint64 reads a 64-bit word.
func (b *ByteBuffer) GetUint64() (uint64, error) {
	p, err := b.next(8)
	if err != nil {
		return 0, err
	}
	return b.order.Uint64(p), nil
}

// GetShort reads a signed 16-bit integer.
func (b *ByteBuffer) GetShort() (int16, error) {
	v, err := b.GetUint16()
	return int16(v), err
}

// GetInt reads a signed 32-bit integer.
func (b *ByteBuffer) GetInt() (int32, error) {
	v, err := b.GetUint32()
	return int32(v), err
}

// GetLong reads a signed 64-bit integer.
func (b *ByteBuffer) GetLong() (int64, error) {
	v, err := b.GetUint64()
	return int64(v), err
}

// GetBool reads one byte; only 1 is true.
func (b *ByteBuffer) GetBool() (bool, error) {
	v, err := b.GetByte()
	return v == 1, err
}

// GetFloat reads a fixed-point word and scales it back down.
func (b *ByteBuffer) GetFloat() (float64, error) {
	v, err := b.GetLong()
	if err != nil {
		return 0, err
	}
	return float64(v) / b.multiplier, nil
}

// Get reads a blob written by Put. The returned slice is a copy.
func (b *ByteBuffer) Get() ([]byte, error) {
	n, err := b.GetUint64()
	if err != nil {
		return nil, err
	}
	if n > uint64(b.Remaining()) {
		return nil, ErrUnderflow
	}
	p, _ := b.next(int(n))
	out := make([]byte, len(p))
	copy(out, p)
	return out, nil
}

// GetString reads a string written by PutString.
func (b *ByteBuffer) GetString() (string, error) {
	tag, err := b.GetByte()
	if err != nil {
		return "", err
	}

	var n uint64
	switch tag {
	case TagUint8:
		v, err := b.GetByte()
		if err != nil {
			return "", err
		}
		n = uint64(v)
	case TagUint16:
		v, err := b.GetUint16()
		if err != nil {
			return "", err
		}
		n = uint64(v)
	case TagUint32:
		v, err := b.GetUint32()
		if err != nil {
			return "", err
		}
		n = uint64(v)
	case TagUint64:
		v, err := b.GetUint64()
		if err != nil {
			return "", err
		}
		n = v
	default:
		return "", ErrInvalidStringTag
	}

	if n > uint64(b.Remaining()) {
		return "", ErrUnderflow
	}
	p, _ := b.next(int(n))
	if !utf8.Valid(p) {
		return "", ErrInvalidUTF8
	}

	s := string(p)
	if s == emptySentinel {
		return "", nil
	}
	return s, nil
}
