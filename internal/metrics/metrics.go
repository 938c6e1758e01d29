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
Package metrics provides Prometheus-compatible metrics for the Brahmaputra producer.

METRIC CATEGORIES:
==================
- Frames: enqueued, written, lost (empty slot or write failure)
- Bytes: written to brokers, enqueued per topic
- Latency: write+flush latency per frame
- Responses: received, broker errors, decode errors
- Connections: live slots, dead slots, connect failures, read errors

PROMETHEUS ENDPOINT:
====================
Metrics are exposed at /metrics in Prometheus text format. /health reports
503 once no slot is live.

EXAMPLE METRICS:
================

	brahmaputra_producer_frames_enqueued_total 12345
	brahmaputra_producer_frames_written_total 12340
	brahmaputra_producer_frames_lost_total 5
	brahmaputra_producer_slots_live 4
*/
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"brahmaputra/internal/config"
	"brahmaputra/internal/logging"
)

// Metrics holds all producer metrics.
type Metrics struct {
	// Frame metrics
	FramesEnqueued atomic.Uint64
	FramesWritten  atomic.Uint64
	FramesLost     atomic.Uint64
	EmptySlotDrops atomic.Uint64
	WriteErrors    atomic.Uint64
	BytesWritten   atomic.Uint64

	// Latency metrics (in microseconds)
	WriteLatencySum   atomic.Uint64
	WriteLatencyCount atomic.Uint64

	// Response metrics
	ResponsesReceived atomic.Uint64
	BrokerErrors      atomic.Uint64
	DecodeErrors      atomic.Uint64

	// Connection metrics
	LiveSlots       atomic.Int64
	DeadSlots       atomic.Uint64
	ReadErrors      atomic.Uint64
	ConnectFailures atomic.Uint64

	// Per-topic metrics
	topicMetrics sync.Map // topic -> *TopicMetrics
}

// TopicMetrics holds metrics for a specific topic.
type TopicMetrics struct {
	MessagesEnqueued atomic.Uint64
	BytesEnqueued    atomic.Uint64
}

// Global metrics instance
var globalMetrics = New()

// Get returns the global metrics instance.
func Get() *Metrics {
	return globalMetrics
}

// New returns an empty metrics set.
func New() *Metrics {
	return &Metrics{}
}

// GetTopicMetrics returns metrics for a specific topic.
func (m *Metrics) GetTopicMetrics(topic string) *TopicMetrics {
	if tm, ok := m.topicMetrics.Load(topic); ok {
		return tm.(*TopicMetrics)
	}
	tm := &TopicMetrics{}
	actual, _ := m.topicMetrics.LoadOrStore(topic, tm)
	return actual.(*TopicMetrics)
}

// RecordEnqueue records a frame accepted by Push.
func (m *Metrics) RecordEnqueue(topic string, bytes int) {
	m.FramesEnqueued.Add(1)

	tm := m.GetTopicMetrics(topic)
	tm.MessagesEnqueued.Add(1)
	tm.BytesEnqueued.Add(uint64(bytes))
}

// RecordWrite records a frame fully written and flushed to a connection.
func (m *Metrics) RecordWrite(bytes int, latency time.Duration) {
	m.FramesWritten.Add(1)
	m.BytesWritten.Add(uint64(bytes))
	m.WriteLatencySum.Add(uint64(latency.Microseconds()))
	m.WriteLatencyCount.Add(1)
}

// RecordWriteError records a frame lost to a write or flush failure.
func (m *Metrics) RecordWriteError() {
	m.WriteErrors.Add(1)
	m.FramesLost.Add(1)
}

// RecordEmptySlot records a frame routed to a slot that never connected.
func (m *Metrics) RecordEmptySlot() {
	m.EmptySlotDrops.Add(1)
	m.FramesLost.Add(1)
}

// RecordResponse records a decoded response frame.
func (m *Metrics) RecordResponse(errorCode int32) {
	m.ResponsesReceived.Add(1)
	if errorCode != 0 {
		m.BrokerErrors.Add(1)
	}
}

// RecordDecodeError records a response frame that could not be decoded.
func (m *Metrics) RecordDecodeError() {
	m.DecodeErrors.Add(1)
}

// RecordConnectFailure records a slot whose dial failed.
func (m *Metrics) RecordConnectFailure() {
	m.ConnectFailures.Add(1)
}

// SlotOpened records a newly connected slot.
func (m *Metrics) SlotOpened() {
	m.LiveSlots.Add(1)
}

// SlotDead records a slot whose reader stopped on a read error.
func (m *Metrics) SlotDead() {
	m.ReadErrors.Add(1)
	m.DeadSlots.Add(1)
	m.LiveSlots.Add(-1)
}

// SlotClosed records a slot closed by shutdown rather than a read error.
func (m *Metrics) SlotClosed() {
	m.LiveSlots.Add(-1)
}

// AverageWriteLatency returns the average write latency in microseconds.
func (m *Metrics) AverageWriteLatency() float64 {
	count := m.WriteLatencyCount.Load()
	if count == 0 {
		return 0
	}
	return float64(m.WriteLatencySum.Load()) / float64(count)
}

// Server provides an HTTP server for Prometheus metrics.
type Server struct {
	config  *config.MetricsConfig
	metrics *Metrics
	healthy func() bool
	server  *http.Server
	logger  *logging.Logger
}

// NewServer creates a new metrics server for m.
func NewServer(cfg *config.MetricsConfig, m *Metrics) *Server {
	return &Server{
		config:  cfg,
		metrics: m,
		logger:  logging.NewLogger("metrics"),
	}
}

// SetHealthCheck installs the function consulted by /health.
func (s *Server) SetHealthCheck(fn func() bool) {
	s.healthy = fn
}

// Handler returns the HTTP handler serving /metrics and /health.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", s.handleMetrics)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Start starts the metrics HTTP server.
func (s *Server) Start() error {
	if !s.config.Enabled {
		s.logger.Info("Metrics server disabled")
		return nil
	}

	s.server = &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		s.logger.Info("Starting metrics server", "addr", s.config.Addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Metrics server error", "error", err)
		}
	}()

	return nil
}

// Stop stops the metrics HTTP server.
func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.logger.Info("Stopping metrics server")
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.healthy != nil && !s.healthy() {
		http.Error(w, "no live connections", http.StatusServiceUnavailable)
		return
	}
	fmt.Fprintln(w, "ok")
}

// handleMetrics handles the /metrics endpoint in Prometheus format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	m := s.metrics
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	counter := func(name, help string, v uint64) {
		fmt.Fprintf(w, "# HELP %s %s\n", name, help)
		fmt.Fprintf(w, "# TYPE %s counter\n", name)
		fmt.Fprintf(w, "%s %d\n", name, v)
	}

	// Frame metrics
	counter("brahmaputra_producer_frames_enqueued_total", "Frames accepted by Push", m.FramesEnqueued.Load())
	counter("brahmaputra_producer_frames_written_total", "Frames written and flushed", m.FramesWritten.Load())
	counter("brahmaputra_producer_frames_lost_total", "Frames dropped by the dispatcher", m.FramesLost.Load())
	counter("brahmaputra_producer_empty_slot_drops_total", "Frames routed to an unconnected slot", m.EmptySlotDrops.Load())
	counter("brahmaputra_producer_write_errors_total", "Write or flush failures", m.WriteErrors.Load())
	counter("brahmaputra_producer_bytes_written_total", "Bytes written to brokers", m.BytesWritten.Load())

	// Latency metrics
	fmt.Fprintf(w, "# HELP brahmaputra_producer_write_latency_avg_microseconds Average write latency\n")
	fmt.Fprintf(w, "# TYPE brahmaputra_producer_write_latency_avg_microseconds gauge\n")
	fmt.Fprintf(w, "brahmaputra_producer_write_latency_avg_microseconds %.2f\n", m.AverageWriteLatency())

	// Response metrics
	counter("brahmaputra_producer_responses_total", "Response frames decoded", m.ResponsesReceived.Load())
	counter("brahmaputra_producer_broker_errors_total", "Responses with a non-zero error code", m.BrokerErrors.Load())
	counter("brahmaputra_producer_decode_errors_total", "Response frames that failed to decode", m.DecodeErrors.Load())

	// Connection metrics
	fmt.Fprintf(w, "# HELP brahmaputra_producer_slots_live Connected slots with a running reader\n")
	fmt.Fprintf(w, "# TYPE brahmaputra_producer_slots_live gauge\n")
	fmt.Fprintf(w, "brahmaputra_producer_slots_live %d\n", m.LiveSlots.Load())

	counter("brahmaputra_producer_slots_dead_total", "Slots marked dead after a read error", m.DeadSlots.Load())
	counter("brahmaputra_producer_read_errors_total", "Socket read failures", m.ReadErrors.Load())
	counter("brahmaputra_producer_connect_failures_total", "Failed dials", m.ConnectFailures.Load())

	// Per-topic metrics
	var topics []string
	m.topicMetrics.Range(func(key, value interface{}) bool {
		topics = append(topics, key.(string))
		return true
	})
	sort.Strings(topics)

	fmt.Fprintf(w, "# HELP brahmaputra_producer_topic_messages_enqueued_total Messages enqueued per topic\n")
	fmt.Fprintf(w, "# TYPE brahmaputra_producer_topic_messages_enqueued_total counter\n")
	for _, topic := range topics {
		tm := m.GetTopicMetrics(topic)
		fmt.Fprintf(w, "brahmaputra_producer_topic_messages_enqueued_total{topic=\"%s\"} %d\n", topic, tm.MessagesEnqueued.Load())
	}

	fmt.Fprintf(w, "# HELP brahmaputra_producer_topic_bytes_enqueued_total Frame bytes enqueued per topic\n")
	fmt.Fprintf(w, "# TYPE brahmaputra_producer_topic_bytes_enqueued_total counter\n")
	for _, topic := range topics {
		tm := m.GetTopicMetrics(topic)
		fmt.Fprintf(w, "brahmaputra_producer_topic_bytes_enqueued_total{topic=\"%s\"} %d\n", topic, tm.BytesEnqueued.Load())
	}
}
