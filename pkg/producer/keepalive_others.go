//go:build !linux

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
	"net"
	"time"
)

// setKeepAlive falls back to the portable knobs; the probe count is left at
// the OS default.
func setKeepAlive(conn *net.TCPConn, period time.Duration, _ int) error {
	if err := conn.SetKeepAlive(true); err != nil {
		return err
	}
	if period > 0 {
		return conn.SetKeepAlivePeriod(period)
	}
	return nil
}
