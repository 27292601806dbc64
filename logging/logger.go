package logging

import (
	"log/slog"
	"os"
	"strings"
)

// NewLogger creates the application's central logger. Logs are emitted as
// JSON on stdout; unknown level strings fall back to INFO.
func NewLogger(logLevel string) *slog.Logger {
	var level slog.Level

	switch strings.ToUpper(logLevel) {
	case "DEBUG":
		level = slog.LevelDebug
	case "INFO":
		level = slog.LevelInfo
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}
	handler := slog.NewJSONHandler(os.Stdout, opts)

	return slog.New(handler)
}
