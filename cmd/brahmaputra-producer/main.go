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
brahmaputra-producer - Brahmaputra demonstration producer.

USAGE:
======

	brahmaputra-producer [options]

Connects a producer pool to the configured broker, pushes -count messages and
then keeps the connections open, logging broker responses, until SIGINT or
SIGTERM.

ENVIRONMENT VARIABLES:
======================

	BRAHMAPUTRA_SERVERS            Broker address host:port (default: localhost:9092)
	BRAHMAPUTRA_POOL               Number of broker connections (default: 1)
	BRAHMAPUTRA_ACKS               Acknowledgement mode label (default: all)
	BRAHMAPUTRA_COMPRESSION_TYPE   Compression tag (default: none)
	BRAHMAPUTRA_COMPRESS_PAYLOAD   Compress payloads locally (default: false)
	BRAHMAPUTRA_LOG_LEVEL          Log level: debug, info, warn, error
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"brahmaputra/internal/banner"
	"brahmaputra/internal/config"
	"brahmaputra/internal/health"
	"brahmaputra/internal/logging"
	"brahmaputra/internal/metrics"
	"brahmaputra/internal/partition"
	"brahmaputra/pkg/cli"
	"brahmaputra/pkg/producer"
)

func printHelp() {
	banner.PrintTo(os.Stdout)
	cli.Header("Usage:")
	fmt.Println("  brahmaputra-producer [options]")
	fmt.Println()
	cli.Header("Options:")
	fmt.Println("  -config string    Path to configuration file (JSON format)")
	fmt.Println("  -count int        Number of messages to push (default: 1000)")
	fmt.Println("  -topic string     Topic to push to (default: loggers)")
	fmt.Println("  -key string       Message key (default: demo-key)")
	fmt.Println("  -keys int         Spread messages over this many generated keys instead of -key")
	fmt.Println("  -message string   Payload text (default: hello brahmaputra)")
	fmt.Println("  -wait             Keep connections open until interrupted (default: true)")
	fmt.Println("  -human-readable   Use human-readable log format instead of JSON")
	fmt.Println("  -quiet            Skip banner and summary, output logs only")
	fmt.Println("  -version          Show version information")
	fmt.Println()
	cli.Header("Examples:")
	fmt.Println("  # Push 10 messages over 4 connections")
	fmt.Println("  BRAHMAPUTRA_POOL=4 brahmaputra-producer -count 10 -human-readable")
	fmt.Println()
	fmt.Println("  # Spread 1000 messages over 16 keys and exit when done")
	fmt.Println("  brahmaputra-producer -keys 16 -wait=false")
	fmt.Println()
}

func main() {
	for _, arg := range os.Args[1:] {
		if arg == "-h" || arg == "--help" || arg == "-help" || arg == "help" {
			printHelp()
			return
		}
	}

	configPath := flag.String("config", "", "Path to configuration file")
	count := flag.Int("count", 1000, "Number of messages to push")
	topic := flag.String("topic", "loggers", "Topic to push to")
	key := flag.String("key", "demo-key", "Message key")
	keys := flag.Int("keys", 0, "Spread messages over this many generated keys")
	message := flag.String("message", "hello brahmaputra", "Payload text")
	wait := flag.Bool("wait", true, "Keep connections open until interrupted")
	humanReadable := flag.Bool("human-readable", false, "Use human-readable log format instead of JSON")
	quietMode := flag.Bool("quiet", false, "Skip banner and summary, output logs only")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Usage = printHelp
	flag.Parse()

	if *showVersion {
		banner.PrintTo(os.Stdout)
		return
	}

	cfgMgr := config.Global()
	if *configPath != "" {
		if err := cfgMgr.LoadFromFile(*configPath); err != nil {
			cli.Error("Error loading config file: %v", err)
			os.Exit(1)
		}
	}
	cfgMgr.LoadFromEnv()
	cfg := cfgMgr.Get()

	if *humanReadable {
		cfg.LogJSON = false
	}
	cfg.ApplyDefaults()

	if !*quietMode {
		banner.PrintProducerWithConfigTo(os.Stdout, cfg)
	}

	logging.Configure(cfg.LogLevel, cfg.LogJSON)
	logger := logging.NewLogger("main")
	logger.Info("Starting Brahmaputra producer", "version", banner.Version, "servers", cfg.Servers, "pool", cfg.Pool)

	m := metrics.Get()
	p, err := producer.New(cfg, producer.WithMetrics(m))
	if err != nil {
		cli.ErrorWithHint(fmt.Sprintf("Invalid configuration: %v", err), "check the config file and BRAHMAPUTRA_* variables")
		os.Exit(1)
	}

	checker := health.NewChecker(banner.Version)
	checker.RegisterCheck("connections", health.ConnectionCheck(cfg.Pool, p.LiveSlots))
	checker.RegisterCheck("queue", health.QueueCheck(cfg.MaxBufferSize, 80, p.QueueDepth))

	var metricsServer *metrics.Server
	if cfg.Metrics.Enabled {
		metricsServer = metrics.NewServer(&cfg.Metrics, m)
		metricsServer.SetHealthCheck(checker.IsHealthy)
		if err := metricsServer.Start(); err != nil {
			logger.Error("Failed to start metrics server", "error", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := p.Connect(ctx); err != nil {
		cli.ErrorWithHint(fmt.Sprintf("Connect failed: %v", err), "is a broker listening on "+cfg.Servers+"?")
		os.Exit(1)
	}

	start := time.Now()
	payload := []byte(*message)
	sent := 0
	for i := 0; i < *count; i++ {
		k := *key
		if *keys > 0 {
			//nolint:gosec // demo key spread, not security sensitive
			k = fmt.Sprintf("key-%d", partition.SimpleRandom(uint32(i), uint32(*keys)))
		}
		if err := p.Push(ctx, *topic, k, payload); err != nil {
			logger.Error("Push failed", "error", err, "sent", sent)
			break
		}
		sent++
	}
	elapsed := time.Since(start)

	if !*quietMode {
		cli.Success("Queued %d message(s) to %q in %s", sent, *topic, elapsed.Round(time.Millisecond))
		cli.KeyValue("Live connections", p.LiveSlots())
		cli.KeyValue("Frames enqueued", m.FramesEnqueued.Load())
		cli.KeyValue("Health", checker.RunChecks().Status)
		if *wait {
			cli.Hint("Press Ctrl+C to stop")
		}
	}

	if *wait {
		<-ctx.Done()
		logger.Info("Shutting down...")
	} else {
		// Close discards queued frames, so give the dispatcher a moment.
		waitDispatched(ctx, m, uint64(sent), 5*time.Second)
	}

	if err := p.Close(); err != nil {
		logger.Error("Error closing producer", "error", err)
	}
	if metricsServer != nil {
		if err := metricsServer.Stop(); err != nil {
			logger.Error("Error stopping metrics server", "error", err)
		}
	}

	if !*quietMode {
		cli.Separator()
		cli.KeyValue("Frames written", m.FramesWritten.Load())
		cli.KeyValue("Frames lost", m.FramesLost.Load())
		cli.KeyValue("Responses", m.ResponsesReceived.Load())
		cli.KeyValue("Broker errors", m.BrokerErrors.Load())
	}
}

// waitDispatched polls until every queued frame has been written or dropped,
// or until timeout.
func waitDispatched(ctx context.Context, m *metrics.Metrics, queued uint64, timeout time.Duration) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	tick := time.NewTicker(10 * time.Millisecond)
	defer tick.Stop()

	for m.FramesWritten.Load()+m.FramesLost.Load() < queued {
		select {
		case <-ctx.Done():
			return
		case <-deadline.C:
			return
		case <-tick.C:
		}
	}
}
