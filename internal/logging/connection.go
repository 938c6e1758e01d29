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
Connection logging for producer slots.

OVERVIEW:
=========
Each pooled broker connection gets a short connection ID derived from its
addresses and open time, so dial, failure and teardown lines for one slot
can be correlated. Payload bytes are never logged, only their size.
*/
package logging

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net"
	"time"
)

// ConnectionLogger provides detailed logging for pooled connections.
type ConnectionLogger struct {
	logger *Logger
}

// NewConnectionLogger creates a new connection logger
func NewConnectionLogger(logger *Logger) *ConnectionLogger {
	return &ConnectionLogger{logger: logger}
}

// LogConnected logs a successfully dialed slot and returns its connection ID.
func (cl *ConnectionLogger) LogConnected(slot int, conn net.Conn, tlsEnabled bool) string {
	connectionID := GenerateConnectionID(conn)
	cl.logger.Info("Broker connection established",
		"slot", slot,
		"connection_id", connectionID,
		"remote_addr", conn.RemoteAddr().String(),
		"local_addr", conn.LocalAddr().String(),
		"tls_enabled", tlsEnabled,
	)
	return connectionID
}

// LogDialFailed logs a slot that could not be connected.
func (cl *ConnectionLogger) LogDialFailed(slot int, addr string, err error) {
	cl.logger.Error("Broker connection failed",
		"slot", slot,
		"addr", addr,
		"error", err,
	)
}

// LogConnectionClosed logs when a slot stops reading.
func (cl *ConnectionLogger) LogConnectionClosed(slot int, connectionID, reason string, duration time.Duration) {
	cl.logger.Warn("Broker connection closed",
		"slot", slot,
		"connection_id", connectionID,
		"reason", reason,
		"duration_seconds", duration.Seconds(),
	)
}

// GenerateConnectionID generates a unique ID for a connection
func GenerateConnectionID(conn net.Conn) string {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s-%s-%d",
		conn.RemoteAddr().String(),
		conn.LocalAddr().String(),
		time.Now().UnixNano())))
	return hex.EncodeToString(hash[:8])
}

// SanitizePayload describes a payload for logging without exposing content.
func SanitizePayload(data []byte) string {
	if len(data) == 0 {
		return "[empty]"
	}
	return fmt.Sprintf("[%d bytes]", len(data))
}
