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
Package cli provides terminal output helpers for the Brahmaputra command-line
tools.

A Printer writes status lines (success, warning, error, hint) and key/value
summaries with optional ANSI colors. The package-level functions use a
default Printer on stdout/stderr whose colors are disabled when NO_COLOR is
set or stdout is not a terminal.

	cli.Success("Sent %d messages", n)
	cli.KeyValue("Live connections", p.LiveSlots())
*/
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// ANSI escape codes.
const (
	Reset  = "\033[0m"
	Bold   = "\033[1m"
	Dim    = "\033[2m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Cyan   = "\033[36m"
)

// Status icons.
const (
	IconSuccess = "✓"
	IconError   = "✗"
	IconWarning = "⚠"
	IconInfo    = "ℹ"
	IconArrow   = "→"
)

// Printer writes formatted status output.
type Printer struct {
	out    io.Writer
	err    io.Writer
	colors bool
}

// NewPrinter creates a Printer. Errors go to errOut.
func NewPrinter(out, errOut io.Writer, colors bool) *Printer {
	return &Printer{out: out, err: errOut, colors: colors}
}

var std = NewPrinter(os.Stdout, os.Stderr, terminalColors())

func terminalColors() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	fi, err := os.Stdout.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}

// SetColorsEnabled toggles colors on the default printer.
func SetColorsEnabled(enabled bool) {
	std.colors = enabled
}

// Colorize wraps text in color when colors are enabled.
func (p *Printer) Colorize(color, text string) string {
	if !p.colors {
		return text
	}
	return color + text + Reset
}

func (p *Printer) Success(format string, args ...interface{}) {
	fmt.Fprintln(p.out, p.Colorize(Green, IconSuccess+" "+fmt.Sprintf(format, args...)))
}

func (p *Printer) Error(format string, args ...interface{}) {
	fmt.Fprintln(p.err, p.Colorize(Red, IconError+" "+fmt.Sprintf(format, args...)))
}

// ErrorWithHint prints an error followed by a dimmed hint line.
func (p *Printer) ErrorWithHint(message, hint string) {
	fmt.Fprintln(p.err, p.Colorize(Red, IconError+" "+message))
	if hint != "" {
		fmt.Fprintln(p.err, p.Colorize(Dim, "  "+IconArrow+" Hint: "+hint))
	}
}

func (p *Printer) Warning(format string, args ...interface{}) {
	fmt.Fprintln(p.out, p.Colorize(Yellow, IconWarning+" "+fmt.Sprintf(format, args...)))
}

func (p *Printer) Info(format string, args ...interface{}) {
	fmt.Fprintln(p.out, p.Colorize(Cyan, IconInfo+" "+fmt.Sprintf(format, args...)))
}

func (p *Printer) Hint(format string, args ...interface{}) {
	fmt.Fprintln(p.out, p.Colorize(Dim, "  "+IconArrow+" "+fmt.Sprintf(format, args...)))
}

func (p *Printer) Header(text string) {
	fmt.Fprintln(p.out, p.Colorize(Bold+Cyan, text))
}

// KeyValue prints an indented "key: value" line with the key padded to a
// common width so consecutive lines align.
func (p *Printer) KeyValue(key string, value interface{}) {
	fmt.Fprintf(p.out, "  %s %v\n", p.Colorize(Dim, fmt.Sprintf("%-18s", key+":")), value)
}

func (p *Printer) Separator() {
	fmt.Fprintln(p.out, p.Colorize(Dim, strings.Repeat("─", 40)))
}

// Package-level helpers on the default printer.

func Success(format string, args ...interface{}) { std.Success(format, args...) }
func Error(format string, args ...interface{})   { std.Error(format, args...) }
func ErrorWithHint(message, hint string)         { std.ErrorWithHint(message, hint) }
func Warning(format string, args ...interface{}) { std.Warning(format, args...) }
func Info(format string, args ...interface{})    { std.Info(format, args...) }
func Hint(format string, args ...interface{})    { std.Hint(format, args...) }
func Header(text string)                         { std.Header(text) }
func KeyValue(key string, value interface{})     { std.KeyValue(key, value) }
func Separator()                                 { std.Separator() }
