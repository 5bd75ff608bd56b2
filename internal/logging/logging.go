// Package logging wraps log/slog behind a small interface, the same
// shape amakane-hakari-kavos's internal/log package uses, extended
// with a text/JSON handler switch for the config surface KVMemo adds
// (KVMEMO_LOG_FORMAT).
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Logger is the collaborator interface the core's components log
// through — never a direct log/slog or fmt.Println dependency.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Slog is the default Logger, backed by log/slog.
type Slog struct {
	l *slog.Logger
}

// New builds a Slog from level ("debug", "info", "warn", "error") and
// format ("text" or "json") strings, defaulting to info/text on
// unrecognized values.
func New(level, format string) *Slog {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return &Slog{l: slog.New(handler)}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (s *Slog) Debug(msg string, args ...any) { s.l.Debug(msg, args...) }
func (s *Slog) Info(msg string, args ...any)  { s.l.Info(msg, args...) }
func (s *Slog) Warn(msg string, args ...any)  { s.l.Warn(msg, args...) }
func (s *Slog) Error(msg string, args ...any) { s.l.Error(msg, args...) }

// With returns a Logger that prepends the given key/value pairs to
// every subsequent call. The TCP server does not use it: it passes its
// per-connection ID as an explicit "conn" argument on each log call.
func (s *Slog) With(args ...any) Logger {
	return &Slog{l: s.l.With(args...)}
}

// Noop discards everything; used in tests that don't want log noise.
type Noop struct{}

func (Noop) Debug(string, ...any) {}
func (Noop) Info(string, ...any)  {}
func (Noop) Warn(string, ...any)  {}
func (Noop) Error(string, ...any) {}
