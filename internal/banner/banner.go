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
Package banner provides the startup banner for the Brahmaputra producer.

USAGE:
======

	banner.PrintTo(os.Stdout)              // Banner with version
	banner.PrintProducerWithConfigTo(w, c) // Banner plus a configuration summary

The banner text is embedded at compile time from banner.txt.
*/
package banner

import (
	_ "embed"
	"fmt"
	"io"
	"strings"

	"brahmaputra/internal/config"
)

//go:embed banner.txt
var bannerText string

// ANSI escape codes for terminal text formatting.
const (
	AnsiRed    = "\033[31m"
	AnsiGreen  = "\033[32m"
	AnsiYellow = "\033[33m"
	AnsiCyan   = "\033[36m"
	AnsiReset  = "\033[0m"
	AnsiBold   = "\033[1m"
	AnsiDim    = "\033[2m"
)

// Version information
const (
	Version   = "0.3.0"
	Copyright = "Copyright (c) 2026 Firefly Software Solutions Inc."
	License   = "Licensed under Apache License 2.0"
)

// GetBanner returns the raw ASCII banner text.
func GetBanner() string {
	return bannerText
}

// GetBannerLines returns the banner as individual lines.
func GetBannerLines() []string {
	return strings.Split(strings.TrimRight(bannerText, "\n"), "\n")
}

// PrintTo writes the banner to the specified writer.
func PrintTo(w io.Writer) {
	printHeader(w)
	fmt.Fprintln(w, AnsiDim+"  "+Copyright+AnsiReset)
	fmt.Fprintln(w)
}

// PrintProducerWithConfigTo writes the banner followed by a summary of the
// settings the producer will run with.
func PrintProducerWithConfigTo(w io.Writer, cfg *config.Config) {
	printHeader(w)

	fmt.Fprint(w, "  "+AnsiDim+"Config: "+AnsiReset)
	if cfg.ConfigFile != "" {
		fmt.Fprintln(w, AnsiYellow+cfg.ConfigFile+AnsiReset)
	} else {
		fmt.Fprintln(w, AnsiDim+"defaults + environment"+AnsiReset)
	}
	fmt.Fprintln(w)

	const lineWidth = 78

	printSectionHeader(w, "Connection", lineWidth)
	servers := cfg.Servers
	if servers == "" && cfg.Discovery.Enabled {
		servers = "mDNS " + cfg.Discovery.Service
	}
	printRow3(w,
		fmtKV("Broker", AnsiGreen+servers+AnsiReset),
		fmtKV("Pool", fmt.Sprint(cfg.Pool)),
		fmtKV("Queue", fmt.Sprint(cfg.MaxBufferSize)))
	printRow3(w,
		fmtEnabled("TLS", cfg.Security.TLSEnabled),
		fmtEnabled("Keep-alive", cfg.SocketKeepAliveEnable),
		fmtKV("Dial timeout", cfg.DialTimeout().String()))
	fmt.Fprintln(w)

	printSectionHeader(w, "Messages", lineWidth)
	printRow3(w,
		fmtKV("Acks", cfg.Acks),
		fmtKV("Compression", cfg.CompressionType),
		fmtKV("Partitions", fmt.Sprint(cfg.TotalPartitions)))
	printRow3(w,
		fmtEnabled("Compress payload", cfg.CompressPayload),
		fmtKV("Max frame", formatBytes(cfg.MaxFrameSize)),
		fmtKV("Log", cfg.LogLevel))
	fmt.Fprintln(w)

	if cfg.Metrics.Enabled {
		printSectionHeader(w, "Endpoints", lineWidth)
		printRow2(w, fmtKV("Metrics", "http://"+cfg.Metrics.Addr+"/metrics"), fmtKV("Health", "/health"))
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, AnsiDim+"  "+Copyright+AnsiReset)
	fmt.Fprintln(w)
}

func printHeader(w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, AnsiCyan+AnsiBold)
	for _, line := range GetBannerLines() {
		fmt.Fprintln(w, "  "+line)
	}
	fmt.Fprintln(w, AnsiReset)
	fmt.Fprintln(w, AnsiGreen+AnsiBold+"  Brahmaputra Producer"+AnsiReset+" "+AnsiDim+"v"+Version+AnsiReset)
	fmt.Fprintln(w, AnsiDim+"  Telemetry publisher"+AnsiReset)
	fmt.Fprintln(w)
}

func printSectionHeader(w io.Writer, title string, width int) {
	titleLen := len(title) + 4 // "[ title ]"
	leftPad := 2
	rightPad := width - leftPad - titleLen
	if rightPad < 0 {
		rightPad = 0
	}
	fmt.Fprintf(w, "  %s[ %s%s%s ]%s%s\n",
		AnsiDim+strings.Repeat("-", leftPad),
		AnsiReset+AnsiCyan+AnsiBold, title, AnsiReset+AnsiDim,
		strings.Repeat("-", rightPad),
		AnsiReset)
}

func fmtKV(key, value string) string {
	return fmt.Sprintf("%s%s:%s %s", AnsiDim, key, AnsiReset, value)
}

func fmtEnabled(name string, enabled bool) string {
	if enabled {
		return AnsiGreen + name + AnsiReset
	}
	return AnsiDim + name + AnsiReset
}

func printRow3(w io.Writer, col1, col2, col3 string) {
	fmt.Fprintf(w, "  %-32s %-26s %s\n", col1, col2, col3)
}

func printRow2(w io.Writer, col1, col2 string) {
	fmt.Fprintf(w, "  %-40s %s\n", col1, col2)
}

func formatBytes(bytes int64) string {
	if bytes == 0 {
		return "default"
	}
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.0f%cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
