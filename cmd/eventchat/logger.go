package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lmittmann/tint"
	slogmulti "github.com/samber/slog-multi"
)

// createChatLogger writes everything to the log file and only warnings and
// errors to stderr, so log lines do not interleave with the conversation.
func createChatLogger(logLevel, logFormat, logFile string) (*slog.Logger, io.Closer) {
	level := parseLogLevel(logLevel)
	console := tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelWarn})

	if logFile == "" {
		return slog.New(console), nopCloser{}
	}
	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
		return slog.New(console), nopCloser{}
	}
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return slog.New(console), nopCloser{}
	}

	opts := &slog.HandlerOptions{Level: level}
	var fileHandler slog.Handler = slog.NewJSONHandler(file, opts)
	if logFormat == "text" {
		fileHandler = slog.NewTextHandler(file, opts)
	}

	return slog.New(slogmulti.Fanout(fileHandler, console)), file
}

// createCLILogger creates a logger for CLI commands that can write to stdout/stderr
func createCLILogger(logLevel string) *slog.Logger {
	level := parseLogLevel(logLevel)

	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level: level,
	}))
}

// parseLogLevel converts string log level to slog.Level
func parseLogLevel(levelStr string) slog.Level {
	switch levelStr {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
