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
	"errors"
	"io"
	"net"
	"time"

	"brahmaputra/internal/logging"
	"brahmaputra/internal/protocol"
)

// readLoop decodes response frames from one slot until the connection fails
// or the producer closes. Once it returns the slot is dead; writes to it will
// fail and be dropped by the dispatcher.
func (p *Producer) readLoop(s *slot) {
	defer p.wg.Done()

	log := p.readLog.With("slot", s.index, "conn_id", s.id)
	maxFrame := uint64(p.cfg.MaxFrameSize)
	reason := "closed"

	for {
		body, err := protocol.ReadFrame(s.r, maxFrame)
		if err != nil {
			reason = p.readFailed(log, err)
			break
		}
		if len(body) == 0 {
			continue
		}

		resp, err := protocol.DecodeResponse(body)
		if err != nil {
			p.metrics.RecordDecodeError()
			log.Warn("Dropping undecodable response",
				"bytes", len(body),
				"error", err,
				"payload", logging.SanitizePayload(body))
			continue
		}

		p.metrics.RecordResponse(resp.ErrorCode)
		p.onResponse(s.index, resp)
	}

	s.dead.Store(true)
	if p.closing() {
		p.metrics.SlotClosed()
	} else {
		p.metrics.SlotDead()
		// Unblock a dispatcher write that might otherwise hang on a peer
		// that stopped reading.
		s.conn.Close()
	}
	p.connLog.LogConnectionClosed(s.index, s.id, reason, time.Since(s.openedAt))
}

func (p *Producer) readFailed(log *logging.Logger, err error) string {
	if p.closing() {
		return "closed"
	}
	switch {
	case errors.Is(err, protocol.ErrFrameTooLarge):
		log.Error("Response frame exceeds limit, dropping connection",
			"max_frame_size", p.cfg.MaxFrameSize, "error", err)
		return "frame too large"
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		log.Warn("Broker closed connection")
		return "eof"
	case errors.Is(err, net.ErrClosed):
		return "closed"
	default:
		log.Error("Read failed", "error", err)
		return "read error"
	}
}
