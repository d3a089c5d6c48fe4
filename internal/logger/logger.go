// Package logger provides the structured logger used across the engine. It
// wraps charmbracelet/log behind a small interface so packages never depend on
// the backend directly and tests can capture output.
package logger

import (
	"io"
	"os"
	"sync"
	"time"

	charmlog "github.com/charmbracelet/log"
)

// Level is a log severity accepted by Configure.
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

// Logger is the structured logging interface used by the engine.
type Logger interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
	With(keyvals ...any) Logger
}

type charmLogger struct {
	l *charmlog.Logger
}

func (c *charmLogger) Debug(msg string, keyvals ...any) { c.l.Debug(msg, keyvals...) }
func (c *charmLogger) Info(msg string, keyvals ...any)  { c.l.Info(msg, keyvals...) }
func (c *charmLogger) Warn(msg string, keyvals ...any)  { c.l.Warn(msg, keyvals...) }
func (c *charmLogger) Error(msg string, keyvals ...any) { c.l.Error(msg, keyvals...) }
func (c *charmLogger) With(keyvals ...any) Logger       { return &charmLogger{l: c.l.With(keyvals...)} }

var (
	mu  sync.RWMutex
	def Logger = newCharm(os.Stderr, InfoLevel)
)

func newCharm(w io.Writer, level Level) Logger {
	l := charmlog.NewWithOptions(w, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Level:           toCharmLevel(level),
	})
	return &charmLogger{l: l}
}

func toCharmLevel(level Level) charmlog.Level {
	switch level {
	case DebugLevel:
		return charmlog.DebugLevel
	case WarnLevel:
		return charmlog.WarnLevel
	case ErrorLevel:
		return charmlog.ErrorLevel
	default:
		return charmlog.InfoLevel
	}
}

// Configure replaces the default logger, typically once at CLI startup.
func Configure(w io.Writer, level Level) {
	mu.Lock()
	defer mu.Unlock()
	def = newCharm(w, level)
}

// SetDefault swaps in a custom logger. Tests use this to capture output.
func SetDefault(l Logger) {
	mu.Lock()
	defer mu.Unlock()
	def = l
}

// Default returns the process-wide logger.
func Default() Logger {
	mu.RLock()
	defer mu.RUnlock()
	return def
}

// Debug logs at debug level on the default logger.
func Debug(msg string, keyvals ...any) { Default().Debug(msg, keyvals...) }

// Info logs at info level on the default logger.
func Info(msg string, keyvals ...any) { Default().Info(msg, keyvals...) }

// Warn logs at warn level on the default logger.
func Warn(msg string, keyvals ...any) { Default().Warn(msg, keyvals...) }

// Error logs at error level on the default logger.
func Error(msg string, keyvals ...any) { Default().Error(msg, keyvals...) }
