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
	"time"
)

// nextSlot advances the round-robin cursor, wrapping to 0 after the last
// slot. The cursor starts at 0 and is advanced before each write, so the
// first frame goes to slot 1 (or slot 0 when the pool has one connection).
func nextSlot(cursor, pool int) int {
	if cursor >= pool-1 {
		return 0
	}
	return cursor + 1
}

// dispatch is the only writer on every slot. It runs until Close.
func (p *Producer) dispatch() {
	defer p.wg.Done()

	cursor := 0
	for {
		select {
		case <-p.done:
			return
		case frame := <-p.queue:
			cursor = nextSlot(cursor, len(p.slots))
			p.write(p.slots[cursor], cursor, frame)
		}
	}
}

// write sends one frame. Failures are logged and the frame is dropped.
func (p *Producer) write(s *slot, index int, frame []byte) {
	if s == nil {
		p.metrics.RecordEmptySlot()
		p.dispatchLog.Warn("Dropping frame for unconnected slot", "slot", index, "bytes", len(frame))
		return
	}

	start := time.Now()
	_, err := s.w.Write(frame)
	if err == nil {
		err = s.w.Flush()
	}
	if err != nil {
		p.metrics.RecordWriteError()
		if !p.closing() {
			p.dispatchLog.Error("Write failed", "slot", index, "conn_id", s.id, "bytes", len(frame), "error", err)
		}
		// A failed bufio.Writer keeps returning its error; start over.
		s.w.Reset(s.conn)
		return
	}
	p.metrics.RecordWrite(len(frame), time.Since(start))
}
