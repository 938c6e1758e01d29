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
Package config provides configuration management for the Brahmaputra producer.

CONFIGURATION SOURCES (in order of precedence):
===============================================
1. Command-line flags (highest priority)
2. Environment variables (BRAHMAPUTRA_* prefix)
3. Configuration file (JSON format)
4. Default values (lowest priority)

CONFIGURATION CATEGORIES:
=========================
- Connection: servers, pool, dial_timeout_ms, socket keep-alive
- Queueing: max_buffer_size
- Message header: acks, compression_type, total_partitions
- Codec: float_multiplier, max_frame_size, compress_payload
- Security: TLS
- Discovery: mDNS broker lookup
- Observability: metrics endpoint, log_level, log_json

Retry, backoff, timeout and batch settings are accepted for compatibility
with existing producer configurations but have no effect; see InertFields.

EXAMPLE CONFIGURATION FILE:
===========================

	{
	  "servers": "broker-1:9092",
	  "pool": 4,
	  "acks": "all",
	  "compression_type": "lz4",
	  "socket_keepalive_enable": true,
	  "security": {
	    "tls_enabled": true,
	    "tls_ca_file": "/etc/brahmaputra/ca.crt"
	  }
	}

ENVIRONMENT VARIABLES:
======================
All settings can be configured via environment variables with BRAHMAPUTRA_ prefix.
Example: BRAHMAPUTRA_SERVERS="broker-1:9092" BRAHMAPUTRA_POOL=4
*/
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Environment variable names
const (
	EnvServers         = "BRAHMAPUTRA_SERVERS"
	EnvPool            = "BRAHMAPUTRA_POOL"
	EnvMaxBufferSize   = "BRAHMAPUTRA_MAX_BUFFER_SIZE"
	EnvAcks            = "BRAHMAPUTRA_ACKS"
	EnvCompressionType = "BRAHMAPUTRA_COMPRESSION_TYPE"
	EnvCompressPayload = "BRAHMAPUTRA_COMPRESS_PAYLOAD"
	EnvTotalPartitions = "BRAHMAPUTRA_TOTAL_PARTITIONS"
	EnvFloatMultiplier = "BRAHMAPUTRA_FLOAT_MULTIPLIER"
	EnvDialTimeoutMs   = "BRAHMAPUTRA_DIAL_TIMEOUT_MS"
	EnvMaxFrameSize    = "BRAHMAPUTRA_MAX_FRAME_SIZE"
	EnvLogLevel        = "BRAHMAPUTRA_LOG_LEVEL"
	EnvLogJSON         = "BRAHMAPUTRA_LOG_JSON"

	// Socket keep-alive
	EnvKeepAliveEnable   = "BRAHMAPUTRA_SOCKET_KEEPALIVE_ENABLE"
	EnvKeepAlivePeriodMs = "BRAHMAPUTRA_KEEPALIVE_PERIOD_MS"
	EnvKeepAliveProbes   = "BRAHMAPUTRA_KEEPALIVE_PROBES"

	// Accepted for compatibility, no effect
	EnvRetries               = "BRAHMAPUTRA_RETRIES"
	EnvRetryBackoffMs        = "BRAHMAPUTRA_RETRY_BACKOFF_MS"
	EnvRetryBackoffMaxMs     = "BRAHMAPUTRA_RETRY_BACKOFF_MAX_MS"
	EnvReconnectBackoffMs    = "BRAHMAPUTRA_RECONNECT_BACKOFF_MS"
	EnvReconnectBackoffMaxMs = "BRAHMAPUTRA_RECONNECT_BACKOFF_MAX_MS"
	EnvMessageTimeoutMs      = "BRAHMAPUTRA_MESSAGE_TIMEOUT_MS"
	EnvDeliveryTimeoutMs     = "BRAHMAPUTRA_DELIVERY_TIMEOUT_MS"
	EnvBatchSize             = "BRAHMAPUTRA_BATCH_SIZE"

	// Security
	EnvTLSEnabled            = "BRAHMAPUTRA_TLS_ENABLED"
	EnvTLSCertFile           = "BRAHMAPUTRA_TLS_CERT_FILE"
	EnvTLSKeyFile            = "BRAHMAPUTRA_TLS_KEY_FILE"
	EnvTLSCAFile             = "BRAHMAPUTRA_TLS_CA_FILE"
	EnvTLSServerName         = "BRAHMAPUTRA_TLS_SERVER_NAME"
	EnvTLSInsecureSkipVerify = "BRAHMAPUTRA_TLS_INSECURE_SKIP_VERIFY"

	// Discovery
	EnvDiscoveryEnabled   = "BRAHMAPUTRA_DISCOVERY_ENABLED"
	EnvDiscoveryService   = "BRAHMAPUTRA_DISCOVERY_SERVICE"
	EnvDiscoveryDomain    = "BRAHMAPUTRA_DISCOVERY_DOMAIN"
	EnvDiscoveryTimeoutMs = "BRAHMAPUTRA_DISCOVERY_TIMEOUT_MS"

	// Observability
	EnvMetricsEnabled = "BRAHMAPUTRA_METRICS_ENABLED"
	EnvMetricsAddr    = "BRAHMAPUTRA_METRICS_ADDR"
)

// Default values.
const (
	DefaultServers           = "localhost:9092"
	DefaultPool              = 1
	DefaultMaxBufferSize     = 100000
	DefaultAcks              = "all"
	DefaultCompressionType   = "none"
	DefaultTotalPartitions   = 5
	DefaultFloatMultiplier   = 10000.0
	DefaultDialTimeoutMs     = 10000
	DefaultMaxFrameSize      = 32 * 1024 * 1024
	DefaultKeepAlivePeriodMs = 15000
	DefaultKeepAliveProbes   = 3
	DefaultDiscoveryService  = "_brahmaputra._tcp"
	DefaultDiscoveryDomain   = "local"
	DefaultDiscoveryTimeout  = 3000
	DefaultMetricsAddr       = ":9095"
)

// Default paths
var DefaultConfigPaths = []string{
	"/etc/brahmaputra/producer.json",
	"$HOME/.config/brahmaputra/producer.json",
	"./producer.json",
}

// MaxTotalPartitions keeps partition ids inside the int32 wire field.
const MaxTotalPartitions = math.MaxInt32

// ErrValidation is wrapped by every error returned from Validate.
var ErrValidation = errors.New("invalid configuration")

var validCompression = []string{"none", "gzip", "lz4", "snappy", "zstd"}

// SecurityConfig holds client TLS configuration.
type SecurityConfig struct {
	TLSEnabled            bool   `json:"tls_enabled"`              // Dial brokers over TLS
	TLSCertFile           string `json:"tls_cert_file"`            // Client certificate for mutual TLS
	TLSKeyFile            string `json:"tls_key_file"`             // Client private key for mutual TLS
	TLSCAFile             string `json:"tls_ca_file"`              // CA bundle used to verify brokers
	TLSServerName         string `json:"tls_server_name"`          // Overrides the SNI / verification name
	TLSInsecureSkipVerify bool   `json:"tls_insecure_skip_verify"` // Testing only
}

// DiscoveryConfig holds configuration for mDNS broker discovery.
type DiscoveryConfig struct {
	Enabled   bool   `json:"enabled"`    // Resolve brokers via mDNS when servers is empty
	Service   string `json:"service"`    // Service type, e.g. _brahmaputra._tcp
	Domain    string `json:"domain"`     // mDNS domain
	TimeoutMs int64  `json:"timeout_ms"` // Query timeout
}

// MetricsConfig holds the optional metrics endpoint configuration.
type MetricsConfig struct {
	Enabled bool   `json:"enabled"` // Serve /metrics and /health
	Addr    string `json:"addr"`    // Metrics HTTP server address
}

// Config holds the producer configuration.
type Config struct {
	// Connection
	Servers       string `json:"servers"`         // Broker address host:port
	Pool          int    `json:"pool"`            // Number of connections
	DialTimeoutMs int64  `json:"dial_timeout_ms"` // Per-connection dial timeout

	// Socket keep-alive
	SocketKeepAliveEnable bool  `json:"socket_keepalive_enable"`
	KeepAlivePeriodMs     int64 `json:"keepalive_period_ms"` // Idle time before the first probe and between probes
	KeepAliveProbes       int   `json:"keepalive_probes"`    // Unanswered probes before the socket is dropped

	// Queueing
	MaxBufferSize int `json:"max_buffer_size"` // Outbound queue capacity in frames

	// Message header fields
	Acks            string `json:"acks"`
	CompressionType string `json:"compression_type"`
	TotalPartitions int    `json:"total_partitions"`

	// Codec
	FloatMultiplier float64 `json:"float_multiplier"`
	MaxFrameSize    int64   `json:"max_frame_size"`   // Largest accepted response frame
	CompressPayload bool    `json:"compress_payload"` // Compress payloads with compression_type

	// Accepted for compatibility, no effect
	Retries               int   `json:"retries"`
	RetryBackoffMs        int64 `json:"retry_backoff_ms"`
	RetryBackoffMaxMs     int64 `json:"retry_backoff_max_ms"`
	ReconnectBackoffMs    int64 `json:"reconnect_backoff_ms"`
	ReconnectBackoffMaxMs int64 `json:"reconnect_backoff_max_ms"`
	MessageTimeoutMs      int64 `json:"message_timeout_ms"`
	DeliveryTimeoutMs     int64 `json:"delivery_timeout_ms"`
	BatchSize             int   `json:"batch_size"`

	// Logging
	LogLevel string `json:"log_level"`
	LogJSON  bool   `json:"log_json"`

	Security  SecurityConfig  `json:"security"`
	Discovery DiscoveryConfig `json:"discovery"`
	Metrics   MetricsConfig   `json:"metrics"`

	// Metadata
	ConfigFile string `json:"-"`
}

// DefaultConfig returns defaults.
func DefaultConfig() *Config {
	return &Config{
		Servers:           DefaultServers,
		Pool:              DefaultPool,
		DialTimeoutMs:     DefaultDialTimeoutMs,
		KeepAlivePeriodMs: DefaultKeepAlivePeriodMs,
		KeepAliveProbes:   DefaultKeepAliveProbes,
		MaxBufferSize:     DefaultMaxBufferSize,
		Acks:              DefaultAcks,
		CompressionType:   DefaultCompressionType,
		TotalPartitions:   DefaultTotalPartitions,
		FloatMultiplier:   DefaultFloatMultiplier,
		MaxFrameSize:      DefaultMaxFrameSize,
		LogLevel:          "info",
		Discovery: DiscoveryConfig{
			Service:   DefaultDiscoveryService,
			Domain:    DefaultDiscoveryDomain,
			TimeoutMs: DefaultDiscoveryTimeout,
		},
		Metrics: MetricsConfig{
			Addr: DefaultMetricsAddr,
		},
	}
}

// Manager handles configuration loading.
type Manager struct {
	config *Config
	mu     sync.RWMutex
}

var globalManager = &Manager{
	config: DefaultConfig(),
}

// Global returns the global manager.
func Global() *Manager {
	return globalManager
}

// NewManager returns a manager seeded with defaults.
func NewManager() *Manager {
	return &Manager{config: DefaultConfig()}
}

// Get returns a copy of current config.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cfg := *m.config
	return &cfg
}

// Set updates the config.
func (m *Manager) Set(cfg *Config) {
	m.mu.Lock()
	m.config = cfg
	m.mu.Unlock()
}

// LoadFromFile loads configuration from a JSON file. Fields absent from the
// file keep their default values.
func (m *Manager) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	cfg.ConfigFile = path
	m.Set(cfg)
	return nil
}

// LoadFromEnv overlays BRAHMAPUTRA_* environment variables on the current
// config. Unparseable numbers are ignored.
func (m *Manager) LoadFromEnv() {
	cfg := m.Get()

	if v := os.Getenv(EnvServers); v != "" {
		cfg.Servers = v
	}
	envInt(EnvPool, &cfg.Pool)
	envInt64(EnvDialTimeoutMs, &cfg.DialTimeoutMs)
	envInt(EnvMaxBufferSize, &cfg.MaxBufferSize)
	if v := os.Getenv(EnvAcks); v != "" {
		cfg.Acks = v
	}
	if v := os.Getenv(EnvCompressionType); v != "" {
		cfg.CompressionType = v
	}
	envBool(EnvCompressPayload, &cfg.CompressPayload)
	envInt(EnvTotalPartitions, &cfg.TotalPartitions)
	if v := os.Getenv(EnvFloatMultiplier); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.FloatMultiplier = f
		}
	}
	envInt64(EnvMaxFrameSize, &cfg.MaxFrameSize)
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	envBool(EnvLogJSON, &cfg.LogJSON)

	envBool(EnvKeepAliveEnable, &cfg.SocketKeepAliveEnable)
	envInt64(EnvKeepAlivePeriodMs, &cfg.KeepAlivePeriodMs)
	envInt(EnvKeepAliveProbes, &cfg.KeepAliveProbes)

	envInt(EnvRetries, &cfg.Retries)
	envInt64(EnvRetryBackoffMs, &cfg.RetryBackoffMs)
	envInt64(EnvRetryBackoffMaxMs, &cfg.RetryBackoffMaxMs)
	envInt64(EnvReconnectBackoffMs, &cfg.ReconnectBackoffMs)
	envInt64(EnvReconnectBackoffMaxMs, &cfg.ReconnectBackoffMaxMs)
	envInt64(EnvMessageTimeoutMs, &cfg.MessageTimeoutMs)
	envInt64(EnvDeliveryTimeoutMs, &cfg.DeliveryTimeoutMs)
	envInt(EnvBatchSize, &cfg.BatchSize)

	// Security environment variables
	envBool(EnvTLSEnabled, &cfg.Security.TLSEnabled)
	if v := os.Getenv(EnvTLSCertFile); v != "" {
		cfg.Security.TLSCertFile = v
	}
	if v := os.Getenv(EnvTLSKeyFile); v != "" {
		cfg.Security.TLSKeyFile = v
	}
	if v := os.Getenv(EnvTLSCAFile); v != "" {
		cfg.Security.TLSCAFile = v
	}
	if v := os.Getenv(EnvTLSServerName); v != "" {
		cfg.Security.TLSServerName = v
	}
	envBool(EnvTLSInsecureSkipVerify, &cfg.Security.TLSInsecureSkipVerify)

	// Discovery environment variables
	envBool(EnvDiscoveryEnabled, &cfg.Discovery.Enabled)
	if v := os.Getenv(EnvDiscoveryService); v != "" {
		cfg.Discovery.Service = v
	}
	if v := os.Getenv(EnvDiscoveryDomain); v != "" {
		cfg.Discovery.Domain = v
	}
	envInt64(EnvDiscoveryTimeoutMs, &cfg.Discovery.TimeoutMs)

	// Observability environment variables
	envBool(EnvMetricsEnabled, &cfg.Metrics.Enabled)
	if v := os.Getenv(EnvMetricsAddr); v != "" {
		cfg.Metrics.Addr = v
	}

	m.Set(cfg)
}

func envBool(name string, dst *bool) {
	if v := os.Getenv(name); v != "" {
		*dst = strings.ToLower(v) == "true" || v == "1"
	}
}

func envInt(name string, dst *int) {
	if v := os.Getenv(name); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			*dst = i
		}
	}
}

func envInt64(name string, dst *int64) {
	if v := os.Getenv(name); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = i
		}
	}
}

// ApplyDefaults replaces zero pool, max_buffer_size and total_partitions
// with their defaults.
func (c *Config) ApplyDefaults() {
	if c.Pool == 0 {
		c.Pool = DefaultPool
	}
	if c.MaxBufferSize == 0 {
		c.MaxBufferSize = DefaultMaxBufferSize
	}
	if c.TotalPartitions == 0 {
		c.TotalPartitions = DefaultTotalPartitions
	}
}

// Validate checks configuration validity. Every problem found is reported;
// the returned error wraps ErrValidation.
func (c *Config) Validate() error {
	var errs []error

	if c.Servers == "" && !c.Discovery.Enabled {
		errs = append(errs, fmt.Errorf("servers is required unless discovery is enabled"))
	}
	if c.Servers != "" {
		if _, _, err := net.SplitHostPort(c.Servers); err != nil {
			errs = append(errs, fmt.Errorf("servers '%s' must be host:port: %w", c.Servers, err))
		}
	}
	// Zero means the default; see ApplyDefaults.
	if c.Pool < 0 {
		errs = append(errs, fmt.Errorf("pool must not be negative, got %d", c.Pool))
	}
	if c.MaxBufferSize < 0 {
		errs = append(errs, fmt.Errorf("max_buffer_size must not be negative, got %d", c.MaxBufferSize))
	}
	if c.TotalPartitions < 0 || c.TotalPartitions > MaxTotalPartitions {
		errs = append(errs, fmt.Errorf("total_partitions must be between 0 and %d, got %d", MaxTotalPartitions, c.TotalPartitions))
	}
	if c.FloatMultiplier < 0 {
		errs = append(errs, fmt.Errorf("float_multiplier must be positive, got %g", c.FloatMultiplier))
	}
	if c.DialTimeoutMs < 0 {
		errs = append(errs, fmt.Errorf("dial_timeout_ms must be non-negative"))
	}
	if c.MaxFrameSize < 0 {
		errs = append(errs, fmt.Errorf("max_frame_size must be non-negative"))
	}
	// acks and compression_type are labels for the broker. The tag only
	// has to name a codec when the payload is compressed locally.
	if c.CompressPayload {
		if err := oneOf("compression_type", c.CompressionType, validCompression); err != nil {
			errs = append(errs, err)
		}
	}

	if c.SocketKeepAliveEnable {
		if c.KeepAlivePeriodMs < 0 {
			errs = append(errs, fmt.Errorf("keepalive_period_ms must be non-negative"))
		}
		if c.KeepAliveProbes < 0 {
			errs = append(errs, fmt.Errorf("keepalive_probes must be non-negative"))
		}
	}

	// Validate TLS configuration
	if c.Security.TLSEnabled {
		if (c.Security.TLSCertFile == "") != (c.Security.TLSKeyFile == "") {
			errs = append(errs, fmt.Errorf("tls_cert_file and tls_key_file must be set together"))
		}
	}

	if c.Discovery.Enabled && c.Discovery.Service == "" {
		errs = append(errs, fmt.Errorf("discovery.service is required when discovery is enabled"))
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		errs = append(errs, fmt.Errorf("metrics.addr is required when metrics are enabled"))
	}

	if len(errs) == 0 {
		return nil
	}
	return errors.Join(append([]error{ErrValidation}, errs...)...)
}

func oneOf(field, value string, allowed []string) error {
	if value == "" {
		return nil
	}
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	list := "'" + strings.Join(allowed, "', '") + "'"
	return fmt.Errorf("%s '%s' is invalid: must be %s or empty", field, value, list)
}

// InertFields returns the JSON names of settings that were given a non-zero
// value but have no effect on this producer, sorted.
func (c *Config) InertFields() []string {
	var names []string
	add := func(name string, set bool) {
		if set {
			names = append(names, name)
		}
	}

	add("retries", c.Retries != 0)
	add("retry_backoff_ms", c.RetryBackoffMs != 0)
	add("retry_backoff_max_ms", c.RetryBackoffMaxMs != 0)
	add("reconnect_backoff_ms", c.ReconnectBackoffMs != 0)
	add("reconnect_backoff_max_ms", c.ReconnectBackoffMaxMs != 0)
	add("message_timeout_ms", c.MessageTimeoutMs != 0)
	add("delivery_timeout_ms", c.DeliveryTimeoutMs != 0)
	add("batch_size", c.BatchSize != 0)

	sort.Strings(names)
	return names
}

// DialTimeout returns the per-connection dial timeout. Zero means no timeout.
func (c *Config) DialTimeout() time.Duration {
	return time.Duration(c.DialTimeoutMs) * time.Millisecond
}

// KeepAlivePeriod returns the keep-alive idle and probe interval.
func (c *Config) KeepAlivePeriod() time.Duration {
	return time.Duration(c.KeepAlivePeriodMs) * time.Millisecond
}

// DiscoveryTimeout returns the mDNS query timeout.
func (c *Config) DiscoveryTimeout() time.Duration {
	return time.Duration(c.Discovery.TimeoutMs) * time.Millisecond
}

// IsTLSEnabled returns true if brokers are dialed over TLS.
func (c *Config) IsTLSEnabled() bool {
	return c.Security.TLSEnabled
}
