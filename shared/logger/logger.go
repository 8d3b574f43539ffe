package logger

import (
	"log/slog"
	"os"
)

// Init installs the process-wide default logger. Development gets a
// human-readable text handler, everything else structured JSON.
func Init(env string, debug bool) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if debug || env == "development" {
		opts.Level = slog.LevelDebug
	}

	var handler slog.Handler
	if env == "development" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}

// With returns the default logger with the given attributes attached.
func With(args ...any) *slog.Logger {
	return slog.Default().With(args...)
}
