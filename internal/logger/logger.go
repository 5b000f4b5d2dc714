// Package logger provides the process-wide structured logger.
//
// All output goes through a single hclog root logger. Modules take a named
// child via Named so their lines carry a component prefix, while the package
// level helpers keep call sites short for one-off messages.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"
)

// Options configures the root logger.
type Options struct {
	Level  string
	Format string // "text" or "json"
	Output io.Writer
}

var (
	mu   sync.RWMutex
	root = newRoot(Options{Level: "info"})
)

func newRoot(opts Options) hclog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:            "moviecat",
		Level:           ParseLevel(opts.Level),
		Output:          out,
		JSONFormat:      strings.EqualFold(opts.Format, "json"),
		IncludeLocation: false,
	})
}

// Configure replaces the root logger. Loggers obtained from Named before the
// call keep their old settings.
func Configure(opts Options) {
	l := newRoot(opts)
	mu.Lock()
	root = l
	mu.Unlock()
}

// ParseLevel maps a config string to an hclog level, defaulting to info.
func ParseLevel(level string) hclog.Level {
	l := hclog.LevelFromString(level)
	if l == hclog.NoLevel {
		return hclog.Info
	}
	return l
}

// Root returns the current root logger.
func Root() hclog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return root
}

// Named returns a child logger for a component.
func Named(name string) hclog.Logger {
	return Root().Named(name)
}

// Info logs an informational message with key/value pairs.
func Info(msg string, args ...interface{}) {
	Root().Info(msg, args...)
}

// Warn logs a warning.
func Warn(msg string, args ...interface{}) {
	Root().Warn(msg, args...)
}

// Error logs an error.
func Error(msg string, args ...interface{}) {
	Root().Error(msg, args...)
}

// Debug logs a debug message.
func Debug(msg string, args ...interface{}) {
	Root().Debug(msg, args...)
}
