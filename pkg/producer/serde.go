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

package producer

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/hamba/avro/v2"
	"google.golang.org/protobuf/proto"
)

// ErrUnknownSerde is returned by GetSerde for an unregistered name.
var ErrUnknownSerde = errors.New("producer: unknown serde")

// Encoder turns an application value into a message payload.
type Encoder interface {
	Encode(v interface{}) ([]byte, error)
	Name() string
}

// Decoder turns a payload back into an application value. The producer
// never decodes payloads itself; decoders exist for tests and tooling that
// inspect what was sent.
type Decoder interface {
	Decode(data []byte, v interface{}) error
	Name() string
}

// Built-in serdes.
var (
	BinarySerde = &binarySerde{}
	JSONSerde   = &jsonSerde{}
	StringSerde = &stringSerde{}
	AvroSerde   = &avroSerde{}
	ProtoSerde  = &protoSerde{}
)

type binarySerde struct{}

func (s *binarySerde) Encode(v interface{}) ([]byte, error) {
	if data, ok := v.([]byte); ok {
		return data, nil
	}
	return nil, fmt.Errorf("binary payload must be []byte, got %T", v)
}

func (s *binarySerde) Decode(data []byte, v interface{}) error {
	target, ok := v.(*[]byte)
	if !ok {
		return fmt.Errorf("binary payload decodes into *[]byte, got %T", v)
	}
	*target = data
	return nil
}

func (s *binarySerde) Name() string { return "binary" }

type jsonSerde struct{}

func (s *jsonSerde) Encode(v interface{}) ([]byte, error) { return json.Marshal(v) }

func (s *jsonSerde) Decode(data []byte, v interface{}) error { return json.Unmarshal(data, v) }

func (s *jsonSerde) Name() string { return "json" }

type stringSerde struct{}

func (s *stringSerde) Encode(v interface{}) ([]byte, error) {
	switch val := v.(type) {
	case string:
		return []byte(val), nil
	case fmt.Stringer:
		return []byte(val.String()), nil
	default:
		return []byte(fmt.Sprint(v)), nil
	}
}

func (s *stringSerde) Decode(data []byte, v interface{}) error {
	target, ok := v.(*string)
	if !ok {
		return fmt.Errorf("string payload decodes into *string, got %T", v)
	}
	*target = string(data)
	return nil
}

func (s *stringSerde) Name() string { return "string" }

// avroSerde encodes against one schema set with SetAvroSchema. A value of
// type func() ([]byte, error) bypasses the schema and is called directly.
type avroSerde struct {
	mu     sync.RWMutex
	schema avro.Schema
}

func (s *avroSerde) SetSchema(schema string) error {
	sch, err := avro.Parse(schema)
	if err != nil {
		return fmt.Errorf("avro schema: %w", err)
	}
	s.mu.Lock()
	s.schema = sch
	s.mu.Unlock()
	return nil
}

func (s *avroSerde) current() (avro.Schema, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.schema == nil {
		return nil, errors.New("avro schema not set; call SetAvroSchema first")
	}
	return s.schema, nil
}

func (s *avroSerde) Encode(v interface{}) ([]byte, error) {
	if fn, ok := v.(func() ([]byte, error)); ok {
		return fn()
	}
	sch, err := s.current()
	if err != nil {
		return nil, err
	}
	return avro.Marshal(sch, v)
}

func (s *avroSerde) Decode(data []byte, v interface{}) error {
	if fn, ok := v.(func([]byte) error); ok {
		return fn(data)
	}
	sch, err := s.current()
	if err != nil {
		return err
	}
	return avro.Unmarshal(sch, data, v)
}

func (s *avroSerde) Name() string { return "avro" }

type protoSerde struct{}

func (s *protoSerde) Encode(v interface{}) ([]byte, error) {
	if fn, ok := v.(func() ([]byte, error)); ok {
		return fn()
	}
	msg, ok := v.(proto.Message)
	if !ok {
		return nil, fmt.Errorf("protobuf payload must be proto.Message, got %T", v)
	}
	return proto.Marshal(msg)
}

func (s *protoSerde) Decode(data []byte, v interface{}) error {
	if fn, ok := v.(func([]byte) error); ok {
		return fn(data)
	}
	msg, ok := v.(proto.Message)
	if !ok {
		return fmt.Errorf("protobuf payload decodes into proto.Message, got %T", v)
	}
	return proto.Unmarshal(data, msg)
}

func (s *protoSerde) Name() string { return "protobuf" }

// SetAvroSchema sets the schema used by the "avro" serde.
func SetAvroSchema(schema string) error {
	return AvroSerde.SetSchema(schema)
}

type serdeRegistry struct {
	mu       sync.RWMutex
	encoders map[string]Encoder
	decoders map[string]Decoder
}

var registry = &serdeRegistry{
	encoders: make(map[string]Encoder),
	decoders: make(map[string]Decoder),
}

func init() {
	RegisterSerde(BinarySerde, BinarySerde)
	RegisterSerde(JSONSerde, JSONSerde)
	RegisterSerde(StringSerde, StringSerde)
	RegisterSerde(AvroSerde, AvroSerde)
	RegisterSerde(ProtoSerde, ProtoSerde)
}

// RegisterSerde adds or replaces a serde under e.Name() and d.Name().
func RegisterSerde(e Encoder, d Decoder) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.encoders[e.Name()] = e
	registry.decoders[d.Name()] = d
}

// GetSerde looks up a serde by name.
func GetSerde(name string) (Encoder, Decoder, error) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	e, okE := registry.encoders[name]
	d, okD := registry.decoders[name]
	if !okE || !okD {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownSerde, name)
	}
	return e, d, nil
}

// SerdeNames lists the registered serdes in sorted order.
func SerdeNames() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	names := make([]string, 0, len(registry.encoders))
	for name := range registry.encoders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
