package logging

import (
	"context"
	"io"
	"log/slog"
)

type loggerContextKey struct{}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return discard
}

func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = discard
	}
	return context.WithValue(ctx, loggerContextKey{}, logger)
}

// FromContext returns the request logger, then fallback, then a discarding
// logger.
func FromContext(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if ctx != nil {
		if logger, _ := ctx.Value(loggerContextKey{}).(*slog.Logger); logger != nil {
			return logger
		}
	}
	if fallback != nil {
		return fallback
	}
	return discard
}
