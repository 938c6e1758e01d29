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
Package protocol defines the Brahmaputra producer wire protocol.

FRAME FORMAT:
=============
Every unit exchanged over a connection is a length-prefixed frame:

	+-------+-------+-------+-------+-------+-------+-------+-------+
	|            Length N (8 bytes, unsigned, big-endian)           |
	+-------+-------+-------+-------+-------+-------+-------+-------+
	|                       Body (N bytes)                          |
	+---------------------------------------------------------------+

A zero-length frame carries no body and is skipped by readers.

PRODUCER MESSAGE BODY:
======================
Fields are written in this exact order with the encodings of package codec:

	version        string   ("V_1")
	topic          string
	kind           string   ("P" producer, "C" consumer)
	message code   int32    (100 = producer push)
	compression    string   (compression tag, e.g. "lz4")
	acks           string   (acknowledgement mode, e.g. "all")
	partition      int32    (1-based, chosen by key hash)
	correlation id string   (opaque, unique per message)
	key            string
	payload        blob     (uint64 length + bytes)

RESPONSE BODY:
==============

	kind           string
	error code     int32    (0 = success)
	error message  string
	topic          string
	partition      int32
	correlation id string
	key            string

Responses carry no payload field; bytes after the key are ignored.

See message.go for the schema and compression.go for payload codecs.
*/
package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"brahmaputra/internal/codec"
)

const (
	// LengthPrefixSize is the size of the frame length prefix in bytes.
	LengthPrefixSize = 8

	// DefaultMaxFrameSize bounds inbound frame bodies.
	DefaultMaxFrameSize = 32 * 1024 * 1024 // 32MB
)

// Frame errors.
var (
	// ErrFrameTooLarge means a declared frame length exceeds the reader's limit.
	// The stream cannot be resynchronised after this.
	ErrFrameTooLarge = errors.New("protocol: frame too large")
)

// Frame wraps body in an outer length-prefixed frame.
func Frame(body []byte) []byte {
	bb := codec.NewByteBuffer(binary.BigEndian, 0)
	bb.Put(body)
	return bb.Bytes()
}

// WriteFrame writes one frame to w.
func WriteFrame(w io.Writer, body []byte) error {
	var prefix [LengthPrefixSize]byte
	binary.BigEndian.PutUint64(prefix[:], uint64(len(body)))
	if _, err := w.Write(prefix[:]); err != nil {
		return err
	}
	if len(body) > 0 {
		_, err := w.Write(body)
		return err
	}
	return nil
}

// ReadFrameLength reads an 8-byte big-endian length prefix.
func ReadFrameLength(r io.Reader) (uint64, error) {
	var prefix [LengthPrefixSize]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(prefix[:]), nil
}

// ReadFrame reads one complete frame body from r, reassembling it across
// however many reads the transport needs. A zero-length frame returns an
// empty body. maxSize of 0 means DefaultMaxFrameSize.
func ReadFrame(r io.Reader, maxSize uint64) ([]byte, error) {
	if maxSize == 0 {
		maxSize = DefaultMaxFrameSize
	}

	n, err := ReadFrameLength(r)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return []byte{}, nil
	}
	if n > maxSize {
		return nil, fmt.Errorf("%w: %d bytes (limit %d)", ErrFrameTooLarge, n, maxSize)
	}

	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, err
	}
	return body, nil
}
