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

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"brahmaputra/internal/config"
)

func TestGet(t *testing.T) {
	m := Get()
	if m == nil {
		t.Fatal("Expected non-nil metrics")
	}
	if Get() != m {
		t.Error("Expected Get to return the same instance")
	}
}

func TestRecordEnqueue(t *testing.T) {
	m := New()

	m.RecordEnqueue("logs", 100)
	m.RecordEnqueue("logs", 50)

	if m.FramesEnqueued.Load() != 2 {
		t.Errorf("Expected FramesEnqueued 2, got %d", m.FramesEnqueued.Load())
	}

	tm := m.GetTopicMetrics("logs")
	if tm.MessagesEnqueued.Load() != 2 {
		t.Errorf("Expected topic MessagesEnqueued 2, got %d", tm.MessagesEnqueued.Load())
	}
	if tm.BytesEnqueued.Load() != 150 {
		t.Errorf("Expected topic BytesEnqueued 150, got %d", tm.BytesEnqueued.Load())
	}
}

func TestRecordWrite(t *testing.T) {
	m := New()

	m.RecordWrite(64, 100*time.Microsecond)
	m.RecordWrite(36, 300*time.Microsecond)

	if m.FramesWritten.Load() != 2 {
		t.Errorf("Expected FramesWritten 2, got %d", m.FramesWritten.Load())
	}
	if m.BytesWritten.Load() != 100 {
		t.Errorf("Expected BytesWritten 100, got %d", m.BytesWritten.Load())
	}
	if avg := m.AverageWriteLatency(); avg != 200 {
		t.Errorf("Expected average latency 200us, got %.2f", avg)
	}
}

func TestAverageWriteLatencyEmpty(t *testing.T) {
	if avg := New().AverageWriteLatency(); avg != 0 {
		t.Errorf("Expected 0, got %.2f", avg)
	}
}

func TestFramesLost(t *testing.T) {
	m := New()

	m.RecordWriteError()
	m.RecordEmptySlot()
	m.RecordEmptySlot()

	if m.FramesLost.Load() != 3 {
		t.Errorf("Expected FramesLost 3, got %d", m.FramesLost.Load())
	}
	if m.WriteErrors.Load() != 1 {
		t.Errorf("Expected WriteErrors 1, got %d", m.WriteErrors.Load())
	}
	if m.EmptySlotDrops.Load() != 2 {
		t.Errorf("Expected EmptySlotDrops 2, got %d", m.EmptySlotDrops.Load())
	}
}

func TestRecordResponse(t *testing.T) {
	m := New()

	m.RecordResponse(0)
	m.RecordResponse(7)
	m.RecordDecodeError()

	if m.ResponsesReceived.Load() != 2 {
		t.Errorf("Expected ResponsesReceived 2, got %d", m.ResponsesReceived.Load())
	}
	if m.BrokerErrors.Load() != 1 {
		t.Errorf("Expected BrokerErrors 1, got %d", m.BrokerErrors.Load())
	}
	if m.DecodeErrors.Load() != 1 {
		t.Errorf("Expected DecodeErrors 1, got %d", m.DecodeErrors.Load())
	}
}

func TestSlotMetrics(t *testing.T) {
	m := New()

	m.SlotOpened()
	m.SlotOpened()
	m.RecordConnectFailure()
	m.SlotDead()

	if m.LiveSlots.Load() != 1 {
		t.Errorf("Expected LiveSlots 1, got %d", m.LiveSlots.Load())
	}
	m.SlotClosed()
	if m.LiveSlots.Load() != 0 {
		t.Errorf("Expected LiveSlots 0 after close, got %d", m.LiveSlots.Load())
	}
	if m.DeadSlots.Load() != 1 {
		t.Errorf("Expected DeadSlots 1, got %d", m.DeadSlots.Load())
	}
	if m.ReadErrors.Load() != 1 {
		t.Errorf("Expected ReadErrors 1, got %d", m.ReadErrors.Load())
	}
	if m.ConnectFailures.Load() != 1 {
		t.Errorf("Expected ConnectFailures 1, got %d", m.ConnectFailures.Load())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	m := New()
	m.RecordEnqueue("logs", 42)
	m.RecordWrite(42, time.Millisecond)
	m.SlotOpened()

	srv := NewServer(&config.MetricsConfig{Enabled: true, Addr: ":0"}, m)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	output := string(body)

	for _, want := range []string{
		"brahmaputra_producer_frames_enqueued_total 1",
		"brahmaputra_producer_frames_written_total 1",
		"brahmaputra_producer_bytes_written_total 42",
		"brahmaputra_producer_slots_live 1",
		`brahmaputra_producer_topic_messages_enqueued_total{topic="logs"} 1`,
	} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected /metrics to contain %q", want)
		}
	}
}

func TestHealthEndpoint(t *testing.T) {
	var live atomic.Bool
	live.Store(true)
	srv := NewServer(&config.MetricsConfig{}, New())
	srv.SetHealthCheck(live.Load)

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}

	live.Store(false)
	resp, err = http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("Expected 503, got %d", resp.StatusCode)
	}
}

func TestServerDisabled(t *testing.T) {
	srv := NewServer(&config.MetricsConfig{Enabled: false}, New())
	if err := srv.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := srv.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}
