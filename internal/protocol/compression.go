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
Payload compression.

The compression tag travels in every producer message and is interpreted by
the broker. By default the client only passes the tag through. When payload
compression is enabled the payload blob is compressed with the codec the
tag names before it is encoded.

SUPPORTED TAGS:
===============

	Tag    | Codec
	-------|------------------------------------------
	none   | payload sent as-is
	gzip   | kafka-go gzip codec (klauspost/compress)
	snappy | kafka-go snappy codec (xerial framing)
	lz4    | kafka-go lz4 codec (pierrec/lz4 frames)
	zstd   | kafka-go zstd codec (klauspost/compress)
*/
package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/segmentio/kafka-go/compress"
)

// CompressionType represents a payload compression algorithm.
type CompressionType byte

const (
	CompressionNone CompressionType = iota
	CompressionGzip
	CompressionLZ4
	CompressionSnappy
	CompressionZstd
)

// ErrUnknownCompression is returned for tags with no codec.
var ErrUnknownCompression = errors.New("protocol: unknown compression type")

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionGzip:
		return "gzip"
	case CompressionLZ4:
		return "lz4"
	case CompressionSnappy:
		return "snappy"
	case CompressionZstd:
		return "zstd"
	default:
		return "unknown"
	}
}

// ParseCompressionType parses a compression tag. The empty tag is "none".
func ParseCompressionType(s string) (CompressionType, error) {
	switch s {
	case "", "none":
		return CompressionNone, nil
	case "gzip":
		return CompressionGzip, nil
	case "lz4":
		return CompressionLZ4, nil
	case "snappy":
		return CompressionSnappy, nil
	case "zstd":
		return CompressionZstd, nil
	default:
		return CompressionNone, fmt.Errorf("%w: %q", ErrUnknownCompression, s)
	}
}

// Compressor provides compression and decompression functionality.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
	Type() CompressionType
}

// NewCompressor returns the compressor for typ.
func NewCompressor(typ CompressionType) Compressor {
	var c compress.Compression
	switch typ {
	case CompressionGzip:
		c = compress.Gzip
	case CompressionLZ4:
		c = compress.Lz4
	case CompressionSnappy:
		c = compress.Snappy
	case CompressionZstd:
		c = compress.Zstd
	default:
		return &NoopCompressor{}
	}
	return &codecCompressor{typ: typ, codec: c.Codec()}
}

// codecCompressor adapts a kafka-go streaming codec to whole-buffer calls.
type codecCompressor struct {
	typ   CompressionType
	codec compress.Codec
}

func (c *codecCompressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := c.codec.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, fmt.Errorf("%s compress: %w", c.typ, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("%s compress: %w", c.typ, err)
	}
	return buf.Bytes(), nil
}

func (c *codecCompressor) Decompress(data []byte) ([]byte, error) {
	r := c.codec.NewReader(bytes.NewReader(data))
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%s decompress: %w", c.typ, err)
	}
	return out, nil
}

func (c *codecCompressor) Type() CompressionType {
	return c.typ
}

// NoopCompressor is a no-op compressor.
type NoopCompressor struct{}

func (n *NoopCompressor) Compress(data []byte) ([]byte, error)   { return data, nil }
func (n *NoopCompressor) Decompress(data []byte) ([]byte, error) { return data, nil }
func (n *NoopCompressor) Type() CompressionType                  { return CompressionNone }
