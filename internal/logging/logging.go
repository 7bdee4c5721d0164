package logging

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds the process logger. Console output goes to w, which is
// usually stderr so it never mixes with command output or the MCP
// stdio stream.
func New(w io.Writer, level string) (zerolog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}
	console := zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	return zerolog.New(console).Level(lvl).With().Timestamp().Logger(), nil
}

// ParseLevel accepts zerolog level names; "" means info
func ParseLevel(level string) (zerolog.Level, error) {
	if strings.TrimSpace(level) == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zerolog.NoLevel, errors.Errorf("invalid log level %q: %w", level, err)
	}
	return lvl, nil
}

// Context returns ctx carrying a stderr logger at level
func Context(ctx context.Context, level string) (context.Context, error) {
	logger, err := New(os.Stderr, level)
	if err != nil {
		return ctx, err
	}
	return logger.WithContext(ctx), nil
}

// Discard returns ctx carrying a logger that drops everything
func Discard(ctx context.Context) context.Context {
	logger := zerolog.Nop()
	return logger.WithContext(ctx)
}

// File returns ctx carrying a JSON logger writing to a size-rotated file
// at path. The TUI uses it since stderr shares the terminal with the
// alternate screen. An empty path discards logs. Close the returned closer
// on exit.
func File(ctx context.Context, path, level string) (context.Context, io.Closer, error) {
	if path == "" {
		return Discard(ctx), io.NopCloser(nil), nil
	}
	lvl, err := ParseLevel(level)
	if err != nil {
		return ctx, nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return ctx, nil, errors.Errorf("creating log directory: %w", err)
	}

	w := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    5, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
	logger := zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	return logger.WithContext(ctx), w, nil
}
