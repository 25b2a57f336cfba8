package config

import (
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
)

// SetupLogger creates a dual-output logger: text to console, JSON to file.
// A nil console logs to the file only, which the interactive UI needs since
// it owns the terminal. Returns the logger and a cleanup function to close the file.
func SetupLogger(console io.Writer, logFile string, level slog.Level) (*slog.Logger, func() error) {
	opts := &slog.HandlerOptions{Level: level}

	var handlers []slog.Handler
	if console != nil {
		handlers = append(handlers, slog.NewTextHandler(console, opts))
	}

	// Try to open log file
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		if len(handlers) == 0 {
			return slog.New(slog.NewTextHandler(io.Discard, opts)), func() error { return nil }
		}
		logger := slog.New(slogmulti.Fanout(handlers...))
		logger.Warn("failed to open log file, using console only", "error", err, "file", logFile)
		return logger, func() error { return nil }
	}

	handlers = append(handlers, slog.NewJSONHandler(file, opts))
	logger := slog.New(slogmulti.Fanout(handlers...))

	cleanup := func() error {
		return file.Close()
	}

	return logger, cleanup
}

// SetupLoggerWithWriters creates a logger with custom writers (for testing).
func SetupLoggerWithWriters(console, file io.Writer, level slog.Level) *slog.Logger {
	consoleHandler := slog.NewTextHandler(console, &slog.HandlerOptions{Level: level})
	fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level})
	return slog.New(slogmulti.Fanout(consoleHandler, fileHandler))
}
