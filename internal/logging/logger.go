package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
)

type Options struct {
	Level  slog.Level
	Format string
	// File, when set, receives a JSON copy of every record.
	File string
}

// New builds the process logger. The returned closer releases the log file
// and is never nil.
func New(out io.Writer, opts Options) (*slog.Logger, io.Closer, error) {
	if out == nil {
		out = os.Stdout
	}

	var console slog.Handler
	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "json":
		console = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: opts.Level})
	default:
		console = tint.NewHandler(out, &tint.Options{Level: opts.Level})
	}

	path := strings.TrimSpace(opts.File)
	if path == "" {
		return slog.New(console), nopCloser{}, nil
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: opts.Level})
	return slog.New(MultiHandler(console, fileHandler)), file, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
