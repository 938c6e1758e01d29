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

// Package health aggregates named checks into one producer health status.
// The worst individual status wins: any unhealthy check makes the producer
// unhealthy, otherwise any degraded check makes it degraded.
package health

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Status is a health level.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

func (s Status) rank() int {
	switch s {
	case StatusHealthy:
		return 0
	case StatusDegraded:
		return 1
	default:
		return 2
	}
}

// CheckResult is the outcome of one check.
type CheckResult struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

// CheckFunc runs a single check. It must not block for long.
type CheckFunc func() CheckResult

// Response is the aggregated result of every registered check.
type Response struct {
	Status    Status                 `json:"status"`
	Version   string                 `json:"version"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks"`
}

// Checker holds registered checks.
type Checker struct {
	version string
	mu      sync.RWMutex
	checks  map[string]CheckFunc
}

// NewChecker creates a checker that reports version in every response.
func NewChecker(version string) *Checker {
	return &Checker{
		version: version,
		checks:  make(map[string]CheckFunc),
	}
}

// RegisterCheck adds or replaces the check called name.
func (c *Checker) RegisterCheck(name string, fn CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = fn
}

// Names returns the registered check names in sorted order.
func (c *Checker) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RunChecks runs every check and aggregates the results.
func (c *Checker) RunChecks() Response {
	c.mu.RLock()
	defer c.mu.RUnlock()

	resp := Response{
		Status:    StatusHealthy,
		Version:   c.version,
		Timestamp: time.Now().UTC(),
		Checks:    make(map[string]CheckResult, len(c.checks)),
	}
	for name, fn := range c.checks {
		result := fn()
		resp.Checks[name] = result
		if result.Status.rank() > resp.Status.rank() {
			resp.Status = result.Status
		}
	}
	return resp
}

// IsHealthy reports whether no check is unhealthy. Degraded counts as
// healthy.
func (c *Checker) IsHealthy() bool {
	return c.RunChecks().Status != StatusUnhealthy
}

// ConnectionCheck is unhealthy with no live connections and degraded while
// fewer than pool are live.
func ConnectionCheck(pool int, live func() int) CheckFunc {
	return func() CheckResult {
		n := live()
		switch {
		case n <= 0:
			return CheckResult{Status: StatusUnhealthy, Message: "no live broker connections"}
		case n < pool:
			return CheckResult{Status: StatusDegraded, Message: fmt.Sprintf("%d of %d connections live", n, pool)}
		default:
			return CheckResult{Status: StatusHealthy, Message: fmt.Sprintf("%d connections live", n)}
		}
	}
}

// QueueCheck is degraded once the outbound queue is fuller than
// thresholdPct percent of capacity.
func QueueCheck(capacity int, thresholdPct float64, depth func() int) CheckFunc {
	return func() CheckResult {
		if capacity <= 0 {
			return CheckResult{Status: StatusHealthy}
		}
		d := depth()
		pct := float64(d) * 100 / float64(capacity)
		if pct > thresholdPct {
			return CheckResult{
				Status:  StatusDegraded,
				Message: fmt.Sprintf("queue %.1f%% full (%d/%d)", pct, d, capacity),
			}
		}
		return CheckResult{Status: StatusHealthy, Message: fmt.Sprintf("%d/%d queued", d, capacity)}
	}
}
