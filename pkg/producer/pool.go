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
	"bufio"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"sync/atomic"
	"time"
)

// slot is one pooled broker connection. The dispatcher owns w and the slot's
// reader goroutine owns r.
type slot struct {
	index    int
	conn     net.Conn
	w        *bufio.Writer
	r        *bufio.Reader
	id       string
	openedAt time.Time
	dead     atomic.Bool
}

// dialPool opens cfg.Pool connections to addr one after another. A failed
// dial leaves a nil entry so that slot indices stay stable.
func (p *Producer) dialPool(ctx context.Context, addr string) ([]*slot, error) {
	slots := make([]*slot, p.cfg.Pool)
	live := 0

	for i := range slots {
		if err := ctx.Err(); err != nil {
			closeSlots(slots)
			return nil, err
		}

		conn, err := p.dial(ctx, addr)
		if err != nil {
			p.metrics.RecordConnectFailure()
			p.connLog.LogDialFailed(i, addr, err)
			continue
		}

		s := &slot{
			index:    i,
			conn:     conn,
			w:        bufio.NewWriter(conn),
			r:        bufio.NewReader(conn),
			openedAt: time.Now(),
		}
		s.id = p.connLog.LogConnected(i, conn, p.tlsConfig != nil)
		p.metrics.SlotOpened()
		slots[i] = s
		live++
	}

	if live == 0 {
		return nil, fmt.Errorf("%w: %s (%d attempts)", ErrNoConnections, addr, len(slots))
	}
	if live < len(slots) {
		p.logger.Warn("Connection pool partially established",
			"live", live,
			"pool", len(slots),
			"addr", addr)
	}
	return slots, nil
}

// dialBroker is the default dialer: TCP with the configured timeout and
// keep-alive, optionally wrapped in TLS.
func (p *Producer) dialBroker(ctx context.Context, addr string) (net.Conn, error) {
	dialer := &net.Dialer{
		Timeout:   p.cfg.DialTimeout(),
		KeepAlive: -1,
	}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}

	if tcp, ok := conn.(*net.TCPConn); ok {
		if err := tcp.SetNoDelay(true); err != nil {
			conn.Close()
			return nil, err
		}
		if p.cfg.SocketKeepAliveEnable {
			if err := setKeepAlive(tcp, p.cfg.KeepAlivePeriod(), p.cfg.KeepAliveProbes); err != nil {
				conn.Close()
				return nil, fmt.Errorf("keep-alive: %w", err)
			}
		}
	}

	if p.tlsConfig == nil {
		return conn, nil
	}

	tlsConn := tls.Client(conn, p.tlsConfig)
	hsCtx := ctx
	if timeout := p.cfg.DialTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		hsCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := tlsConn.HandshakeContext(hsCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("tls handshake: %w", err)
	}
	return tlsConn, nil
}

func closeSlots(slots []*slot) {
	for _, s := range slots {
		if s != nil {
			s.conn.Close()
		}
	}
}
