//go:build linux

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

	"golang.org/x/sys/unix"
)

// setKeepAlive enables TCP keep-alive with period as both the idle time and
// the probe interval, dropping the connection after probes unanswered probes.
func setKeepAlive(conn *net.TCPConn, period time.Duration, probes int) error {
	raw, err := conn.SyscallConn()
	if err != nil {
		return err
	}

	secs := int(period / time.Second)
	if secs < 1 {
		secs = 1
	}

	var sockErr error
	err = raw.Control(func(fd uintptr) {
		s := int(fd)
		if sockErr = unix.SetsockoptInt(s, unix.SOL_SOCKET, unix.SO_KEEPALIVE, 1); sockErr != nil {
			return
		}
		if sockErr = unix.SetsockoptInt(s, unix.IPPROTO_TCP, unix.TCP_KEEPIDLE, secs); sockErr != nil {
			return
		}
		if sockErr = unix.SetsockoptInt(s, unix.IPPROTO_TCP, unix.TCP_KEEPINTVL, secs); sockErr != nil {
			return
		}
		if probes > 0 {
			sockErr = unix.SetsockoptInt(s, unix.IPPROTO_TCP, unix.TCP_KEEPCNT, probes)
		}
	})
	if err != nil {
		return err
	}
	return sockErr
}
