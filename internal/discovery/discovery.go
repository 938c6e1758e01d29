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
Package discovery resolves broker addresses over mDNS (Bonjour/Avahi).

Brokers advertise a service such as "_brahmaputra._tcp" in the "local"
domain. The producer only browses; it never advertises itself. Discovery is
consulted when no servers address is configured.

NETWORK REQUIREMENTS:
=====================
- mDNS uses UDP port 5353 (multicast)
- Brokers must be on the same network segment
- Firewalls must allow mDNS traffic
*/
package discovery

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sort"
	"strconv"
	"time"

	"github.com/hashicorp/mdns"

	"brahmaputra/internal/config"
	"brahmaputra/internal/logging"
)

// ErrNoBrokers is returned when a browse finds no usable broker.
var ErrNoBrokers = errors.New("discovery: no brokers found")

// Broker is one discovered broker endpoint.
type Broker struct {
	Name string
	Host string
	Addr string // host:port ready to dial
	Info []string
}

// queryFunc matches mdns.QueryContext.
type queryFunc func(ctx context.Context, params *mdns.QueryParam) error

// Resolver browses mDNS for brokers.
type Resolver struct {
	service string
	domain  string
	timeout time.Duration
	query   queryFunc
	logger  *logging.Logger
}

// NewResolver creates a resolver from the discovery settings.
func NewResolver(cfg config.DiscoveryConfig) *Resolver {
	timeout := time.Duration(cfg.TimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = config.DefaultDiscoveryTimeout * time.Millisecond
	}
	domain := cfg.Domain
	if domain == "" {
		domain = config.DefaultDiscoveryDomain
	}
	return &Resolver{
		service: cfg.Service,
		domain:  domain,
		timeout: timeout,
		query:   mdns.QueryContext,
		logger:  logging.NewLogger("discovery"),
	}
}

// Discover browses for the configured service until the timeout elapses or
// ctx is done. Brokers are returned sorted by address.
func (r *Resolver) Discover(ctx context.Context) ([]Broker, error) {
	entries := make(chan *mdns.ServiceEntry, 16)

	params := mdns.DefaultParams(r.service)
	params.Domain = r.domain
	params.Timeout = r.timeout
	params.Entries = entries
	params.DisableIPv6 = true

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	r.logger.Debug("Browsing for brokers", "service", r.service, "domain", r.domain, "timeout", r.timeout)

	errCh := make(chan error, 1)
	go func() {
		errCh <- r.query(ctx, params)
		close(entries)
	}()

	seen := make(map[string]bool)
	var brokers []Broker
	for entry := range entries {
		b, ok := toBroker(entry)
		if !ok || seen[b.Addr] {
			continue
		}
		seen[b.Addr] = true
		brokers = append(brokers, b)
	}

	if err := <-errCh; err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("discovery: query %s: %w", r.service, err)
	}

	sort.Slice(brokers, func(i, j int) bool { return brokers[i].Addr < brokers[j].Addr })
	r.logger.Info("Broker discovery finished", "service", r.service, "found", len(brokers))
	return brokers, nil
}

// Resolve returns the address of the first discovered broker.
func (r *Resolver) Resolve(ctx context.Context) (string, error) {
	brokers, err := r.Discover(ctx)
	if err != nil {
		return "", err
	}
	if len(brokers) == 0 {
		return "", ErrNoBrokers
	}
	return brokers[0].Addr, nil
}

func toBroker(e *mdns.ServiceEntry) (Broker, bool) {
	if e == nil || e.Port <= 0 {
		return Broker{}, false
	}

	var ip net.IP
	switch {
	case e.AddrV4 != nil:
		ip = e.AddrV4
	case e.AddrV6 != nil:
		ip = e.AddrV6
	default:
		return Broker{}, false
	}

	return Broker{
		Name: e.Name,
		Host: e.Host,
		Addr: net.JoinHostPort(ip.String(), strconv.Itoa(e.Port)),
		Info: e.InfoFields,
	}, true
}
