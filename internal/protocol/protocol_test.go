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

package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
)

// chunkReader returns at most n bytes per Read, like a socket delivering
// a frame in several segments.
type chunkReader struct {
	r io.Reader
	n int
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if len(p) > c.n {
		p = p[:c.n]
	}
	return c.r.Read(p)
}

func TestFrame(t *testing.T) {
	body := []byte("hello")
	got := Frame(body)

	want := []byte{0, 0, 0, 0, 0, 0, 0, 5, 'h', 'e', 'l', 'l', 'o'}
	if !bytes.Equal(got, want) {
		t.Errorf("Frame() = %v, want %v", got, want)
	}
}

func TestWriteFrame(t *testing.T) {
	tests := []struct {
		name string
		body []byte
	}{
		{"empty", nil},
		{"small", []byte{1, 2, 3}},
		{"large", bytes.Repeat([]byte{0xAB}, 70000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteFrame(&buf, tt.body); err != nil {
				t.Fatalf("WriteFrame() error = %v", err)
			}

			if buf.Len() != LengthPrefixSize+len(tt.body) {
				t.Fatalf("frame size = %d, want %d", buf.Len(), LengthPrefixSize+len(tt.body))
			}
			if n := binary.BigEndian.Uint64(buf.Bytes()[:LengthPrefixSize]); n != uint64(len(tt.body)) {
				t.Errorf("length prefix = %d, want %d", n, len(tt.body))
			}
			if !bytes.Equal(buf.Bytes(), Frame(tt.body)) {
				t.Error("WriteFrame and Frame disagree")
			}
		})
	}
}

func TestReadFrame(t *testing.T) {
	body := []byte("response body")

	got, err := ReadFrame(bytes.NewReader(Frame(body)), 0)
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}
	if !bytes.Equal(got, body) {
		t.Errorf("ReadFrame() = %q, want %q", got, body)
	}
}

func TestReadFrameFragmented(t *testing.T) {
	body := bytes.Repeat([]byte("abcdefgh"), 512)
	stream := append(Frame(body), Frame([]byte("second"))...)

	for _, chunk := range []int{1, 3, 7, 8, 100} {
		r := &chunkReader{r: bytes.NewReader(stream), n: chunk}

		first, err := ReadFrame(r, 0)
		if err != nil {
			t.Fatalf("chunk %d: first ReadFrame() error = %v", chunk, err)
		}
		if !bytes.Equal(first, body) {
			t.Errorf("chunk %d: first frame corrupted", chunk)
		}

		second, err := ReadFrame(r, 0)
		if err != nil {
			t.Fatalf("chunk %d: second ReadFrame() error = %v", chunk, err)
		}
		if string(second) != "second" {
			t.Errorf("chunk %d: second frame = %q, want %q", chunk, second, "second")
		}
	}
}

func TestReadFrameZeroLength(t *testing.T) {
	stream := append(Frame(nil), Frame([]byte("next"))...)
	r := bytes.NewReader(stream)

	got, err := ReadFrame(r, 0)
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("zero-length frame body = %v, want empty", got)
	}

	got, err = ReadFrame(r, 0)
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}
	if string(got) != "next" {
		t.Errorf("frame after zero-length = %q, want %q", got, "next")
	}
}

func TestReadFrameErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   []byte
		maxSize uint64
		wantErr error
	}{
		{
			name:    "too large",
			input:   []byte{0, 0, 0, 0, 0, 0, 0x10, 0},
			maxSize: 1024,
			wantErr: ErrFrameTooLarge,
		},
		{
			name:    "too large default limit",
			input:   []byte{0, 0, 0, 1, 0, 0, 0, 0},
			wantErr: ErrFrameTooLarge,
		},
		{
			name:    "short prefix",
			input:   []byte{0, 0, 0},
			wantErr: io.ErrUnexpectedEOF,
		},
		{
			name:    "empty stream",
			input:   nil,
			wantErr: io.EOF,
		},
		{
			name:    "short body",
			input:   []byte{0, 0, 0, 0, 0, 0, 0, 4, 'a', 'b'},
			wantErr: io.ErrUnexpectedEOF,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadFrame(bytes.NewReader(tt.input), tt.maxSize)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ReadFrame() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
