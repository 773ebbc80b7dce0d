// Package logger provides the printf-style logging used across the reaper.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Logger defines the interface for logging throughout the application.
// Different implementations can be used for different contexts (console, silent, etc.)
type Logger interface {
	Info(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Debug(msg string, args ...interface{})
}

// ConsoleLogger writes human-readable, timestamped logs to stdout/stderr.
// Debug messages are only written when verbose is enabled.
type ConsoleLogger struct {
	mu      sync.Mutex
	out     io.Writer
	errOut  io.Writer
	verbose bool
	now     func() time.Time
}

func NewConsoleLogger(verbose bool) *ConsoleLogger {
	return &ConsoleLogger{
		out:     os.Stdout,
		errOut:  os.Stderr,
		verbose: verbose,
		now:     time.Now,
	}
}

// NewWriterLogger sends every level to w. Used by commands that need all
// output on a single stream.
func NewWriterLogger(w io.Writer, verbose bool) *ConsoleLogger {
	return &ConsoleLogger{
		out:     w,
		errOut:  w,
		verbose: verbose,
		now:     time.Now,
	}
}

func (c *ConsoleLogger) Info(msg string, args ...interface{}) {
	c.write(c.out, "INFO", msg, args...)
}

func (c *ConsoleLogger) Error(msg string, args ...interface{}) {
	c.write(c.errOut, "ERROR", msg, args...)
}

func (c *ConsoleLogger) Debug(msg string, args ...interface{}) {
	if !c.verbose {
		return
	}
	c.write(c.out, "DEBUG", msg, args...)
}

// write serialises lines so concurrent checks never interleave mid-line.
func (c *ConsoleLogger) write(w io.Writer, level, msg string, args ...interface{}) {
	line := fmt.Sprintf(msg, args...)
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(w, "%s [%s] %s\n", c.now().UTC().Format(time.RFC3339), level, line)
}

// SilentLogger discards all log messages.
// Components fall back to it when constructed without a logger.
type SilentLogger struct{}

func NewSilentLogger() *SilentLogger {
	return &SilentLogger{}
}

func (s *SilentLogger) Info(msg string, args ...interface{})  {}
func (s *SilentLogger) Error(msg string, args ...interface{}) {}
func (s *SilentLogger) Debug(msg string, args ...interface{}) {}
