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
	"testing"

	"brahmaputra/internal/codec"
)

func TestEncodeProducerMessageLayout(t *testing.T) {
	msg := &ProducerMessage{
		Version:       Version,
		Topic:         "logs",
		Kind:          KindProducer,
		Code:          MessageCodeProducerMsg,
		Compression:   "none",
		Acks:          "all",
		Partition:     3,
		CorrelationID: "c1",
		Key:           "user-42",
		Payload:       []byte{1, 2, 3},
	}

	want := []byte{
		1, 3, 'V', '_', '1',
		1, 4, 'l', 'o', 'g', 's',
		1, 1, 'P',
		0, 0, 0, 100,
		1, 4, 'n', 'o', 'n', 'e',
		1, 3, 'a', 'l', 'l',
		0, 0, 0, 3,
		1, 2, 'c', '1',
		1, 7, 'u', 's', 'e', 'r', '-', '4', '2',
		0, 0, 0, 0, 0, 0, 0, 3, 1, 2, 3,
	}

	got := EncodeProducerMessage(msg)
	if !bytes.Equal(got, want) {
		t.Fatalf("EncodeProducerMessage() =\n%v\nwant\n%v", got, want)
	}

	frame := EncodeProducerFrame(msg)
	if n := binary.BigEndian.Uint64(frame[:LengthPrefixSize]); n != uint64(len(want)) {
		t.Errorf("frame length = %d, want %d", n, len(want))
	}
	if !bytes.Equal(frame[LengthPrefixSize:], want) {
		t.Error("frame body differs from message body")
	}
}

func TestEncodeProducerMessageEmptyFields(t *testing.T) {
	msg := &ProducerMessage{
		Version: Version,
		Topic:   "t",
		Kind:    KindProducer,
		Code:    MessageCodeProducerMsg,
	}

	decoded, err := DecodeProducerMessage(EncodeProducerMessage(msg))
	if err != nil {
		t.Fatalf("DecodeProducerMessage() error = %v", err)
	}
	if decoded.Compression != "" || decoded.Acks != "" || decoded.Key != "" {
		t.Errorf("empty fields decoded as %q/%q/%q", decoded.Compression, decoded.Acks, decoded.Key)
	}
	if len(decoded.Payload) != 0 {
		t.Errorf("payload = %v, want empty", decoded.Payload)
	}
}

func TestProducerMessageRoundTrip(t *testing.T) {
	msg := &ProducerMessage{
		Version:       Version,
		Topic:         "metrics.cpu",
		Kind:          KindProducer,
		Code:          MessageCodeProducerMsg,
		Compression:   "lz4",
		Acks:          "1",
		Partition:     5,
		CorrelationID: "6f1c2a4e-8d7b-4c1a-9e2f-0b3d5a7c9e11",
		Key:           "höst-Ω",
		Payload:       bytes.Repeat([]byte{0xFE}, 40000),
	}

	got, err := DecodeProducerMessage(EncodeProducerMessage(msg))
	if err != nil {
		t.Fatalf("DecodeProducerMessage() error = %v", err)
	}

	if got.Version != msg.Version || got.Topic != msg.Topic || got.Kind != msg.Kind {
		t.Errorf("header fields = %q/%q/%q", got.Version, got.Topic, got.Kind)
	}
	if got.Code != msg.Code {
		t.Errorf("Code = %d, want %d", got.Code, msg.Code)
	}
	if got.Compression != msg.Compression || got.Acks != msg.Acks {
		t.Errorf("Compression/Acks = %q/%q", got.Compression, got.Acks)
	}
	if got.Partition != msg.Partition {
		t.Errorf("Partition = %d, want %d", got.Partition, msg.Partition)
	}
	if got.CorrelationID != msg.CorrelationID {
		t.Errorf("CorrelationID = %q, want %q", got.CorrelationID, msg.CorrelationID)
	}
	if got.Key != msg.Key {
		t.Errorf("Key = %q, want %q", got.Key, msg.Key)
	}
	if !bytes.Equal(got.Payload, msg.Payload) {
		t.Error("Payload mismatch")
	}
}

func TestResponseRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		resp Response
	}{
		{
			name: "ack",
			resp: Response{Kind: KindProducer, Topic: "logs", Partition: 2, CorrelationID: "abc", Key: "user-42"},
		},
		{
			name: "error",
			resp: Response{Kind: KindProducer, ErrorCode: 17, ErrorMessage: "topic not found", Topic: "nope", Partition: 1, CorrelationID: "xyz", Key: "k"},
		},
		{
			name: "empty strings",
			resp: Response{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeResponse(EncodeResponse(&tt.resp))
			if err != nil {
				t.Fatalf("DecodeResponse() error = %v", err)
			}
			if *got != tt.resp {
				t.Errorf("DecodeResponse() = %+v, want %+v", *got, tt.resp)
			}
		})
	}
}

func TestDecodeResponseIgnoresTrailingBytes(t *testing.T) {
	resp := Response{Kind: "P", Topic: "logs", Partition: 4, CorrelationID: "id", Key: "k"}
	body := EncodeResponse(&resp)

	// a broker may append a payload blob; it is not parsed
	bb := codec.NewByteBuffer(binary.BigEndian, 0)
	bb.Put([]byte("ignored payload"))
	body = append(body, bb.Bytes()...)

	got, err := DecodeResponse(body)
	if err != nil {
		t.Fatalf("DecodeResponse() error = %v", err)
	}
	if *got != resp {
		t.Errorf("DecodeResponse() = %+v, want %+v", *got, resp)
	}
}

func TestDecodeResponseErrors(t *testing.T) {
	full := EncodeResponse(&Response{Kind: "P", ErrorMessage: "m", Topic: "t", CorrelationID: "c", Key: "k"})

	tests := []struct {
		name    string
		body    []byte
		wantErr error
	}{
		{"empty", nil, codec.ErrUnderflow},
		{"truncated", full[:len(full)-1], codec.ErrUnderflow},
		{"bad tag", []byte{9, 1, 'P'}, codec.ErrInvalidStringTag},
		{"bad utf8", []byte{1, 2, 0xff, 0xfe}, codec.ErrInvalidUTF8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeResponse(tt.body)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("DecodeResponse() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestResponseErr(t *testing.T) {
	ok := &Response{Kind: "P"}
	if err := ok.Err(); err != nil {
		t.Errorf("Err() = %v, want nil", err)
	}

	failed := &Response{ErrorCode: 3, ErrorMessage: "leader not available"}
	err := failed.Err()
	var be *BrokerError
	if !errors.As(err, &be) {
		t.Fatalf("Err() = %v, want *BrokerError", err)
	}
	if be.Code != 3 || be.Message != "leader not available" {
		t.Errorf("BrokerError = %+v", be)
	}
}
