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
brahmaputra-discover - Brahmaputra broker discovery tool.

Browses the local network over mDNS (Bonjour/Avahi) for brokers advertising
the producer service and prints their addresses. The quiet output is the
address a producer with discovery enabled would dial.

Usage:

	brahmaputra-discover                    # Browse with the default timeout
	brahmaputra-discover --timeout 10       # Custom timeout in seconds
	brahmaputra-discover --json             # Output as JSON
	brahmaputra-discover --quiet            # Only output addresses (for scripting)
*/
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"brahmaputra/internal/banner"
	"brahmaputra/internal/config"
	"brahmaputra/internal/discovery"
	"brahmaputra/internal/logging"
	"brahmaputra/pkg/cli"
)

func main() {
	timeout := flag.Int("timeout", config.DefaultDiscoveryTimeout/1000, "Discovery timeout in seconds")
	service := flag.String("service", config.DefaultDiscoveryService, "mDNS service name")
	domain := flag.String("domain", config.DefaultDiscoveryDomain, "mDNS domain")
	jsonOutput := flag.Bool("json", false, "Output as JSON")
	quiet := flag.Bool("quiet", false, "Only output broker addresses (for scripting)")
	version := flag.Bool("version", false, "Show version information")
	flag.BoolVar(quiet, "q", false, "Only output broker addresses (for scripting)")
	flag.BoolVar(version, "v", false, "Show version information")
	flag.Usage = printUsage
	flag.Parse()

	if *version {
		banner.PrintTo(os.Stdout)
		return
	}

	// The mDNS library logs non-fatal IPv6 errors through the standard logger.
	log.SetOutput(io.Discard)
	logging.SetGlobalLevel(logging.WARN)

	if !*quiet && !*jsonOutput {
		banner.PrintTo(os.Stdout)
		cli.Info("Browsing for %s on %s (timeout: %ds)...", *service, *domain, *timeout)
		fmt.Println()
	}

	resolver := discovery.NewResolver(config.DiscoveryConfig{
		Enabled:   true,
		Service:   *service,
		Domain:    *domain,
		TimeoutMs: int64(*timeout) * 1000,
	})

	brokers, err := resolver.Discover(context.Background())
	if err != nil {
		if !*quiet {
			cli.Error("Discovery failed: %v", err)
		}
		os.Exit(1)
	}

	if len(brokers) == 0 {
		if !*quiet && !*jsonOutput {
			cli.Warning("No brokers found on the network.")
			cli.Hint("brokers must advertise %s", *service)
			cli.Hint("mDNS uses UDP port 5353; check firewalls")
			cli.Hint("try --timeout 10 on slower networks")
		}
		os.Exit(0)
	}

	switch {
	case *jsonOutput:
		outputJSON(brokers)
	case *quiet:
		outputQuiet(brokers)
	default:
		outputHuman(brokers)
	}
}

func printUsage() {
	banner.PrintTo(os.Stdout)
	cli.Header("Usage:")
	fmt.Println("  brahmaputra-discover [options]")
	fmt.Println()
	cli.Header("Options:")
	fmt.Println("  --timeout <seconds>   Discovery timeout")
	fmt.Println("  --service <name>      mDNS service name (default: " + config.DefaultDiscoveryService + ")")
	fmt.Println("  --domain <name>       mDNS domain (default: " + config.DefaultDiscoveryDomain + ")")
	fmt.Println("  --json                Output results as JSON")
	fmt.Println("  --quiet, -q           Only output addresses (for scripting)")
	fmt.Println("  --version, -v         Show version information")
	fmt.Println()
	cli.Header("Examples:")
	fmt.Println("  # Point a producer at the first broker found")
	fmt.Println("  BRAHMAPUTRA_SERVERS=$(brahmaputra-discover -q | cut -d, -f1) brahmaputra-producer")
	fmt.Println()
}

func outputJSON(brokers []discovery.Broker) {
	type brokerOutput struct {
		Name string   `json:"name"`
		Host string   `json:"host,omitempty"`
		Addr string   `json:"addr"`
		Info []string `json:"info,omitempty"`
	}

	out := make([]brokerOutput, len(brokers))
	for i, b := range brokers {
		out[i] = brokerOutput{Name: b.Name, Host: b.Host, Addr: b.Addr, Info: b.Info}
	}

	data, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(data))
}

func outputQuiet(brokers []discovery.Broker) {
	addrs := make([]string, len(brokers))
	for i, b := range brokers {
		addrs[i] = b.Addr
	}
	fmt.Println(strings.Join(addrs, ","))
}

func outputHuman(brokers []discovery.Broker) {
	cli.Success("Found %d broker(s)", len(brokers))
	fmt.Println()
	for i, b := range brokers {
		cli.Header(fmt.Sprintf("  [%d] %s", i+1, b.Name))
		cli.KeyValue("Address", b.Addr)
		if b.Host != "" {
			cli.KeyValue("Host", b.Host)
		}
		if len(b.Info) > 0 {
			cli.KeyValue("Info", strings.Join(b.Info, " "))
		}
		fmt.Println()
	}
	cli.Hint("Use --json for machine-readable output")
}
