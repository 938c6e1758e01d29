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
	"encoding/binary"
	"fmt"

	"brahmaputra/internal/codec"
)

// Version is the application message version written by this client.
const Version = "V_1"

// Message kinds.
const (
	KindProducer = "P"
	KindConsumer = "C"
)

// MessageCode identifies the application message type.
type MessageCode int32

// Message codes.
const (
	MessageCodeProducerMsg MessageCode = 100 // producer push
)

// ProducerMessage is one application message in wire field order.
type ProducerMessage struct {
	Version       string
	Topic         string
	Kind          string
	Code          MessageCode
	Compression   string
	Acks          string
	Partition     int32
	CorrelationID string // opaque, passed through to the broker untouched
	Key           string
	Payload       []byte
}

// Response is a decoded acknowledgement or error frame from the broker.
type Response struct {
	Kind          string
	ErrorCode     int32
	ErrorMessage  string
	Topic         string
	Partition     int32
	CorrelationID string
	Key           string
}

// BrokerError is a response with a non-zero error code.
type BrokerError struct {
	Code    int32
	Message string
}

func (e *BrokerError) Error() string {
	return fmt.Sprintf("broker error %d: %s", e.Code, e.Message)
}

// Err returns a *BrokerError when the response reports a failure, nil otherwise.
func (r *Response) Err() error {
	if r.ErrorCode == 0 {
		return nil
	}
	return &BrokerError{Code: r.ErrorCode, Message: r.ErrorMessage}
}

// EncodeProducerMessage encodes msg into a message body (no outer frame).
func EncodeProducerMessage(msg *ProducerMessage) []byte {
	bb := codec.NewByteBuffer(binary.BigEndian, 0)

	bb.PutString(msg.Version)
	bb.PutString(msg.Topic)
	bb.PutString(msg.Kind)
	bb.PutInt(int32(msg.Code))
	bb.PutString(msg.Compression)
	bb.PutString(msg.Acks)
	bb.PutInt(msg.Partition)
	bb.PutString(msg.CorrelationID)
	bb.PutString(msg.Key)
	bb.Put(msg.Payload)

	return bb.Bytes()
}

// EncodeProducerFrame encodes msg and wraps it in an outer frame, ready to
// be written to a connection.
func EncodeProducerFrame(msg *ProducerMessage) []byte {
	return Frame(EncodeProducerMessage(msg))
}

// DecodeProducerMessage parses a message body produced by EncodeProducerMessage.
func DecodeProducerMessage(body []byte) (*ProducerMessage, error) {
	bb := codec.NewByteBuffer(binary.BigEndian, 0)
	bb.Wrap(body)

	msg := &ProducerMessage{}
	var err error

	if msg.Version, err = bb.GetString(); err != nil {
		return nil, fieldError("version", err)
	}
	if msg.Topic, err = bb.GetString(); err != nil {
		return nil, fieldError("topic", err)
	}
	if msg.Kind, err = bb.GetString(); err != nil {
		return nil, fieldError("kind", err)
	}
	code, err := bb.GetInt()
	if err != nil {
		return nil, fieldError("message code", err)
	}
	msg.Code = MessageCode(code)
	if msg.Compression, err = bb.GetString(); err != nil {
		return nil, fieldError("compression", err)
	}
	if msg.Acks, err = bb.GetString(); err != nil {
		return nil, fieldError("acks", err)
	}
	if msg.Partition, err = bb.GetInt(); err != nil {
		return nil, fieldError("partition", err)
	}
	if msg.CorrelationID, err = bb.GetString(); err != nil {
		return nil, fieldError("correlation id", err)
	}
	if msg.Key, err = bb.GetString(); err != nil {
		return nil, fieldError("key", err)
	}
	if msg.Payload, err = bb.Get(); err != nil {
		return nil, fieldError("payload", err)
	}

	return msg, nil
}

// EncodeResponse encodes a response body. Brokers and test doubles use it.
func EncodeResponse(resp *Response) []byte {
	bb := codec.NewByteBuffer(binary.BigEndian, 0)

	bb.PutString(resp.Kind)
	bb.PutInt(resp.ErrorCode)
	bb.PutString(resp.ErrorMessage)
	bb.PutString(resp.Topic)
	bb.PutInt(resp.Partition)
	bb.PutString(resp.CorrelationID)
	bb.PutString(resp.Key)

	return bb.Bytes()
}

// DecodeResponse parses a response frame body.
func DecodeResponse(body []byte) (*Response, error) {
	bb := codec.NewByteBuffer(binary.BigEndian, 0)
	bb.Wrap(body)

	resp := &Response{}
	var err error

	if resp.Kind, err = bb.GetString(); err != nil {
		return nil, fieldError("kind", err)
	}
	if resp.ErrorCode, err = bb.GetInt(); err != nil {
		return nil, fieldError("error code", err)
	}
	if resp.ErrorMessage, err = bb.GetString(); err != nil {
		return nil, fieldError("error message", err)
	}
	if resp.Topic, err = bb.GetString(); err != nil {
		return nil, fieldError("topic", err)
	}
	if resp.Partition, err = bb.GetInt(); err != nil {
		return nil, fieldError("partition", err)
	}
	if resp.CorrelationID, err = bb.GetString(); err != nil {
		return nil, fieldError("correlation id", err)
	}
	if resp.Key, err = bb.GetString(); err != nil {
		return nil, fieldError("key", err)
	}

	return resp, nil
}

func fieldError(field string, err error) error {
	return fmt.Errorf("protocol: decode %s: %w", field, err)
}
