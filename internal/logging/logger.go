// Package logging adapts the teacher's output/logger.go leveled-console
// logger to the checker's needs: the same Progress/Statistic/Debug/
// Warning/Error shape and verbosity gating, with color wiring added for
// Warning/Error (the teacher's own logger never imported fatih/color;
// only its cmd/query.go did, for query-result tables, so this is a
// documented enhancement rather than a literal carryover).
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
)

// Verbosity mirrors output.VerbosityLevel.
type Verbosity int

const (
	VerbosityDefault Verbosity = iota
	VerbosityVerbose
	VerbosityDebug
)

// Logger is a small leveled console logger, one per CLI invocation.
type Logger struct {
	verbosity Verbosity
	writer    io.Writer
	startTime time.Time
	timings   map[string]time.Duration
	color     bool
}

// New constructs a Logger writing to stderr.
func New(v Verbosity) *Logger {
	return NewWithWriter(v, os.Stderr)
}

// NewWithWriter constructs a Logger writing to w (tests supply a buffer).
func NewWithWriter(v Verbosity, w io.Writer) *Logger {
	return &Logger{
		verbosity: v,
		writer:    w,
		startTime: time.Now(),
		timings:   make(map[string]time.Duration),
		color:     true,
	}
}

// DisableColor turns off ANSI coloring (e.g. when stdout isn't a TTY, or
// --outputjson is in effect and stderr logging should stay plain).
func (l *Logger) DisableColor() { l.color = false }

func (l *Logger) shouldShowStatistics() bool { return l.verbosity >= VerbosityVerbose }
func (l *Logger) shouldShowDebug() bool      { return l.verbosity >= VerbosityDebug }

// Progress logs a verbose-gated progress line (e.g. "analyzing foo.py").
func (l *Logger) Progress(format string, args ...interface{}) {
	if !l.shouldShowStatistics() {
		return
	}
	fmt.Fprintf(l.writer, format+"\n", args...)
}

// Statistic logs a verbose-gated summary count.
func (l *Logger) Statistic(format string, args ...interface{}) {
	if !l.shouldShowStatistics() {
		return
	}
	fmt.Fprintf(l.writer, format+"\n", args...)
}

// Debug logs a debug-gated, elapsed-time-prefixed diagnostic line.
func (l *Logger) Debug(format string, args ...interface{}) {
	if !l.shouldShowDebug() {
		return
	}
	elapsed := time.Since(l.startTime)
	fmt.Fprintf(l.writer, "[%8.3fs] "+format+"\n", append([]interface{}{elapsed.Seconds()}, args...)...)
}

// Warning always logs, colored yellow when color is enabled.
func (l *Logger) Warning(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if l.color {
		msg = color.New(color.FgYellow).Sprint(msg)
	}
	fmt.Fprintln(l.writer, msg)
}

// Error always logs, colored red when color is enabled.
func (l *Logger) Error(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if l.color {
		msg = color.New(color.FgRed).Sprint(msg)
	}
	fmt.Fprintln(l.writer, msg)
}

// StartTiming begins timing a named phase (e.g. "parse", "bind",
// "evaluate") and returns a function that records the elapsed duration
// when called.
func (l *Logger) StartTiming(name string) func() {
	start := time.Now()
	return func() {
		l.timings[name] = time.Since(start)
	}
}

// GetTiming returns a previously recorded timing.
func (l *Logger) GetTiming(name string) (time.Duration, bool) {
	d, ok := l.timings[name]
	return d, ok
}

// GetAllTimings returns every recorded timing, keyed by phase name.
func (l *Logger) GetAllTimings() map[string]time.Duration {
	out := make(map[string]time.Duration, len(l.timings))
	for k, v := range l.timings {
		out[k] = v
	}
	return out
}

// PrintTimingSummary writes every recorded timing, gated on verbose.
func (l *Logger) PrintTimingSummary() {
	if !l.shouldShowStatistics() {
		return
	}
	for name, d := range l.timings {
		fmt.Fprintf(l.writer, "  %-12s %s\n", name, d)
	}
}
