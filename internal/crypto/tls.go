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
Package crypto provides client TLS configuration for broker connections.

SECURITY DEFAULTS:
==================
- Minimum TLS version: 1.2
- Server certificates verified against the system pool or a configured CA
- Optional client certificate for mutual TLS (mTLS)

CERTIFICATE SETUP:
==================
Generate a self-signed CA and client certificate for testing:

	# Generate CA
	openssl genrsa -out ca.key 4096
	openssl req -new -x509 -days 365 -key ca.key -out ca.crt

	# Generate client certificate
	openssl genrsa -out client.key 2048
	openssl req -new -key client.key -out client.csr
	openssl x509 -req -days 365 -in client.csr -CA ca.crt -CAkey ca.key -out client.crt
*/
package crypto

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"os"

	"brahmaputra/internal/config"
)

var (
	// ErrCertNotFound is returned when the certificate file cannot be read.
	ErrCertNotFound = errors.New("tls: certificate file not found")

	// ErrKeyNotFound is returned when the key file cannot be read.
	ErrKeyNotFound = errors.New("tls: key file not found")

	// ErrInvalidCertificate is returned when the certificate is invalid.
	ErrInvalidCertificate = errors.New("tls: invalid certificate")

	// ErrCANotFound is returned when the CA certificate file cannot be read.
	ErrCANotFound = errors.New("tls: CA certificate file not found")
)

// TLSConfig holds TLS configuration options.
type TLSConfig struct {
	// CertFile is the path to the client certificate file (PEM format, optional).
	CertFile string

	// KeyFile is the path to the client private key file (PEM format, optional).
	KeyFile string

	// CAFile is the path to the CA bundle used to verify brokers (optional).
	CAFile string

	// ServerName overrides the name used for SNI and verification.
	ServerName string

	// MinVersion is the minimum TLS version (default: TLS 1.2).
	MinVersion uint16

	// InsecureSkipVerify disables certificate verification (for testing only).
	InsecureSkipVerify bool
}

// FromSecurityConfig maps the producer security settings onto TLSConfig.
func FromSecurityConfig(sc config.SecurityConfig) TLSConfig {
	return TLSConfig{
		CertFile:           sc.TLSCertFile,
		KeyFile:            sc.TLSKeyFile,
		CAFile:             sc.TLSCAFile,
		ServerName:         sc.TLSServerName,
		InsecureSkipVerify: sc.TLSInsecureSkipVerify,
	}
}

// NewClientTLSConfig creates a TLS configuration for dialing brokers at addr.
// When no server name is configured the host part of addr is used.
func NewClientTLSConfig(cfg TLSConfig, addr string) (*tls.Config, error) {
	tlsConfig := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
		ServerName:         cfg.ServerName,
	}

	if cfg.MinVersion != 0 {
		tlsConfig.MinVersion = cfg.MinVersion
	}

	if tlsConfig.ServerName == "" && addr != "" {
		if host, _, err := net.SplitHostPort(addr); err == nil {
			tlsConfig.ServerName = host
		}
	}

	// Load client certificate if provided
	if cfg.CertFile != "" && cfg.KeyFile != "" {
		if err := ValidateTLSFiles(cfg.CertFile, cfg.KeyFile); err != nil {
			return nil, err
		}
		cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("tls: failed to load client certificate: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	// Load CA certificate for server verification
	if cfg.CAFile != "" {
		caCert, err := os.ReadFile(cfg.CAFile)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrCANotFound, cfg.CAFile)
		}

		caCertPool := x509.NewCertPool()
		if !caCertPool.AppendCertsFromPEM(caCert) {
			return nil, ErrInvalidCertificate
		}

		tlsConfig.RootCAs = caCertPool
	}

	return tlsConfig, nil
}

// ValidateTLSFiles checks if the TLS certificate and key files exist and are valid.
func ValidateTLSFiles(certFile, keyFile string) error {
	if _, err := os.Stat(certFile); os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrCertNotFound, certFile)
	}
	if _, err := os.Stat(keyFile); os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrKeyNotFound, keyFile)
	}

	_, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return fmt.Errorf("tls: invalid certificate or key: %w", err)
	}

	return nil
}
