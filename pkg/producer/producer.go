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
Package producer publishes messages to a Brahmaputra broker.

QUICK START:
============

	cfg := producer.DefaultConfig()
	cfg.Servers = "broker-1:9092"
	cfg.Pool = 4

	p, err := producer.New(cfg)
	if err != nil { ... }
	if err := p.Connect(ctx); err != nil { ... }
	defer p.Close()

	err = p.Push(ctx, "logs", "user-42", []byte{1, 2, 3})

DELIVERY MODEL:
===============
Push encodes the message, wraps it in a frame and places it on a bounded
queue. It blocks only while the queue is full. A single dispatcher goroutine
takes frames off the queue and writes each one to the next connection in
round-robin order. Broker responses are read by one goroutine per connection
and passed to the response handler.

Delivery is fire-and-forget. A frame routed to a connection that failed to
dial, or whose write fails, is logged and dropped; Push never reports I/O
errors and nothing is retried or reconnected.

THREAD SAFETY:
==============
Push and PushValue are safe for concurrent use. Each connection's write half
is used only by the dispatcher and its read half only by its reader.
*/
package producer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"brahmaputra/internal/codec"
	"brahmaputra/internal/config"
	"brahmaputra/internal/crypto"
	"brahmaputra/internal/discovery"
	"brahmaputra/internal/logging"
	"brahmaputra/internal/metrics"
	"brahmaputra/internal/partition"
	"brahmaputra/internal/protocol"
)

// Config is the producer configuration.
type Config = config.Config

// Response is a decoded broker response.
type Response = protocol.Response

// Metrics collects producer counters.
type Metrics = metrics.Metrics

// DefaultConfig returns the default producer configuration.
func DefaultConfig() *Config {
	return config.DefaultConfig()
}

var (
	// ErrNotConnected is returned by Push before Connect has succeeded.
	ErrNotConnected = errors.New("producer: not connected")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("producer: closed")

	// ErrNoConnections is returned by Connect when every dial failed.
	ErrNoConnections = errors.New("producer: no broker connections could be established")

	// ErrAlreadyConnected is returned by a second call to Connect.
	ErrAlreadyConnected = errors.New("producer: already connected")
)

const (
	stateIdle int32 = iota
	stateConnected
	stateClosed
)

// ResponseHandler receives every decoded response. It is called from the
// reader goroutine of the slot the response arrived on, so handlers for
// different slots may run concurrently.
type ResponseHandler func(slot int, resp *Response)

// Resolver finds a broker address when none is configured.
type Resolver interface {
	Resolve(ctx context.Context) (string, error)
}

// Option configures a Producer.
type Option func(*Producer)

// WithResponseHandler replaces the default handler, which logs each response.
func WithResponseHandler(h ResponseHandler) Option {
	return func(p *Producer) {
		if h != nil {
			p.onResponse = h
		}
	}
}

// WithMetrics records into m instead of a private metrics set.
func WithMetrics(m *Metrics) Option {
	return func(p *Producer) {
		if m != nil {
			p.metrics = m
		}
	}
}

// WithResolver overrides mDNS discovery.
func WithResolver(r Resolver) Option {
	return func(p *Producer) {
		p.resolver = r
	}
}

// Producer is a pooled, round-robin message publisher.
type Producer struct {
	cfg         *Config
	compressor  protocol.Compressor
	metrics     *Metrics
	logger      *logging.Logger
	dispatchLog *logging.Logger
	readLog     *logging.Logger
	connLog     *logging.ConnectionLogger
	onResponse  ResponseHandler
	resolver    Resolver
	dial        func(ctx context.Context, addr string) (net.Conn, error)
	tlsConfig   *tls.Config

	mu    sync.Mutex // serializes Connect and Close
	state atomic.Int32
	slots []*slot
	queue chan []byte
	done  chan struct{}
	wg    sync.WaitGroup
}

// New creates a producer. The configuration is copied, zero sizes take
// their defaults, and the result is validated.
func New(cfg *Config, opts ...Option) (*Producer, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	c := *cfg
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	// Without local compression the tag is only a label for the broker.
	var compressor protocol.Compressor = &protocol.NoopCompressor{}
	if c.CompressPayload {
		ctype, err := protocol.ParseCompressionType(c.CompressionType)
		if err != nil {
			return nil, err
		}
		compressor = protocol.NewCompressor(ctype)
	}

	logger := logging.NewLogger("producer")
	p := &Producer{
		cfg:         &c,
		compressor:  compressor,
		metrics:     metrics.New(),
		logger:      logger,
		dispatchLog: logging.NewLogger("dispatcher"),
		readLog:     logging.NewLogger("reader"),
		connLog:     logging.NewConnectionLogger(logger),
	}
	p.onResponse = p.logResponse
	p.dial = p.dialBroker
	if c.Discovery.Enabled {
		p.resolver = discovery.NewResolver(c.Discovery)
	}

	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Connect dials the connection pool and starts the dispatcher and readers.
// Slots whose dial fails stay empty; Connect fails only if all of them do.
func (p *Producer) Connect(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state.Load() {
	case stateConnected:
		return ErrAlreadyConnected
	case stateClosed:
		return ErrClosed
	}

	if inert := p.cfg.InertFields(); len(inert) > 0 {
		p.logger.Warn("Settings accepted but not applied", "fields", strings.Join(inert, ","))
	}

	addr, err := p.resolveAddr(ctx)
	if err != nil {
		return err
	}

	if p.cfg.IsTLSEnabled() {
		tlsConfig, err := crypto.NewClientTLSConfig(crypto.FromSecurityConfig(p.cfg.Security), addr)
		if err != nil {
			return fmt.Errorf("producer: configure TLS: %w", err)
		}
		p.tlsConfig = tlsConfig
	}

	slots, err := p.dialPool(ctx, addr)
	if err != nil {
		return err
	}

	p.slots = slots
	p.queue = make(chan []byte, p.cfg.MaxBufferSize)
	p.done = make(chan struct{})

	p.wg.Add(1)
	go p.dispatch()

	for _, s := range slots {
		if s == nil {
			continue
		}
		p.wg.Add(1)
		go p.readLoop(s)
	}

	// Publishes slots and queue to Push, LiveSlots and QueueDepth.
	p.state.Store(stateConnected)

	p.logger.Info("Producer connected",
		"addr", addr,
		"pool", len(slots),
		"live", p.LiveSlots(),
		"queue", p.cfg.MaxBufferSize)
	return nil
}

func (p *Producer) resolveAddr(ctx context.Context) (string, error) {
	if p.cfg.Servers != "" {
		return p.cfg.Servers, nil
	}
	if p.resolver == nil {
		return "", fmt.Errorf("%w: no servers configured", ErrNoConnections)
	}
	addr, err := p.resolver.Resolve(ctx)
	if err != nil {
		return "", fmt.Errorf("producer: resolve broker: %w", err)
	}
	p.logger.Info("Discovered broker", "addr", addr)
	return addr, nil
}

// Push encodes a message and queues it for sending, blocking while the queue
// is full. A nil return means the frame was queued, not that it was
// delivered.
func (p *Producer) Push(ctx context.Context, topic, key string, payload []byte) error {
	switch p.state.Load() {
	case stateIdle:
		return ErrNotConnected
	case stateClosed:
		return ErrClosed
	}

	frame, err := p.encode(topic, key, payload)
	if err != nil {
		return err
	}

	select {
	case <-p.done:
		return ErrClosed
	default:
	}

	select {
	case p.queue <- frame:
		p.metrics.RecordEnqueue(topic, len(frame))
		return nil
	case <-p.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PushValue encodes v with the named payload serde and pushes the result.
func (p *Producer) PushValue(ctx context.Context, topic, key string, v interface{}, serde string) error {
	enc, _, err := GetSerde(serde)
	if err != nil {
		return err
	}
	payload, err := enc.Encode(v)
	if err != nil {
		return fmt.Errorf("producer: %s encode: %w", serde, err)
	}
	return p.Push(ctx, topic, key, payload)
}

func (p *Producer) encode(topic, key string, payload []byte) ([]byte, error) {
	if p.cfg.CompressPayload && p.compressor.Type() != protocol.CompressionNone {
		compressed, err := p.compressor.Compress(payload)
		if err != nil {
			return nil, fmt.Errorf("producer: %w", err)
		}
		payload = compressed
	}

	msg := &protocol.ProducerMessage{
		Version:       protocol.Version,
		Topic:         topic,
		Kind:          protocol.KindProducer,
		Code:          protocol.MessageCodeProducerMsg,
		Compression:   p.cfg.CompressionType,
		Acks:          p.cfg.Acks,
		Partition:     partition.Select(key, p.cfg.TotalPartitions),
		CorrelationID: uuid.NewString(),
		Key:           key,
		Payload:       payload,
	}
	return protocol.EncodeProducerFrame(msg), nil
}

// NewPayloadBuffer returns a big-endian codec buffer using the configured
// float multiplier, for building structured payloads.
func (p *Producer) NewPayloadBuffer() *codec.ByteBuffer {
	return codec.NewByteBuffer(nil, p.cfg.FloatMultiplier)
}

// LiveSlots reports how many connections are open with a running reader.
func (p *Producer) LiveSlots() int {
	if p.state.Load() == stateIdle {
		return 0
	}
	n := 0
	for _, s := range p.slots {
		if s != nil && !s.dead.Load() {
			n++
		}
	}
	return n
}

// QueueDepth reports how many frames are waiting for the dispatcher.
func (p *Producer) QueueDepth() int {
	if p.state.Load() == stateIdle {
		return 0
	}
	return len(p.queue)
}

// Metrics returns the metrics set this producer records into.
func (p *Producer) Metrics() *Metrics {
	return p.metrics
}

// Close stops the dispatcher and readers and closes every connection.
// Frames still queued are discarded.
func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	prev := p.state.Swap(stateClosed)
	if prev != stateConnected {
		return nil
	}

	close(p.done)

	var errs []error
	for _, s := range p.slots {
		if s == nil {
			continue
		}
		if err := s.conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			errs = append(errs, fmt.Errorf("slot %d: %w", s.index, err))
		}
	}
	p.wg.Wait()

	p.logger.Info("Producer closed", "discarded", len(p.queue))
	return errors.Join(errs...)
}

func (p *Producer) closing() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

func (p *Producer) logResponse(slot int, resp *Response) {
	if err := resp.Err(); err != nil {
		p.logger.Error("Broker rejected message",
			"slot", slot,
			"error_code", resp.ErrorCode,
			"error_message", resp.ErrorMessage,
			"topic", resp.Topic,
			"partition", resp.Partition,
			"correlation_id", resp.CorrelationID)
		return
	}
	p.logger.Debug("Broker response",
		"slot", slot,
		"error_message", resp.ErrorMessage,
		"topic", resp.Topic,
		"partition", resp.Partition,
		"correlation_id", resp.CorrelationID)
}
