// Package logging defines the structured-logging interface used across
// clipkeeper and its slog and zap adapters.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "clip captured", "id", clip.ID, "type", clip.Type)
type Logger interface {
	// Debug logs diagnostics that are noisy in normal operation.
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs a warning message for unusual but non-fatal conditions.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs an error message for failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}

// Backend names accepted by New.
const (
	BackendZap  = "zap"
	BackendSlog = "slog"
)

// New builds a Logger writing to w. The zap backend emits JSON, the slog
// backend emits logfmt-style text.
func New(backend string, w io.Writer) (Logger, error) {
	switch backend {
	case BackendZap, "":
		return NewZapLogger(newZapCore(w)), nil
	case BackendSlog:
		return NewTextLogger(w, slog.LevelInfo), nil
	default:
		return nil, fmt.Errorf("unknown log backend %q", backend)
	}
}

// Discard returns a Logger that drops everything. Handy in tests.
func Discard() Logger {
	return NewSlogLogger(slog.New(slog.DiscardHandler))
}
