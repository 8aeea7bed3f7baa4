// Package logger provides a centralized slog-based logger with level and format control.
package logger

import (
	"log/slog"
	"os"
	"strings"
)

const (
	defaultLevel  = "info"
	defaultFormat = "text"
)

// Init initializes the global logger based on environment variables.
// Priority: SLSCTL_LOG_LEVEL > LOG_LEVEL > Default ("info")
// SLSCTL_LOG_FORMAT: text, json (default: text)
func Init() {
	levelStr := os.Getenv("SLSCTL_LOG_LEVEL")
	if levelStr == "" {
		levelStr = os.Getenv("LOG_LEVEL")
	}
	level := parseLevel(levelStr)

	format := strings.ToLower(os.Getenv("SLSCTL_LOG_FORMAT"))
	if format == "" {
		format = defaultFormat
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "":
		return parseLevel(defaultLevel)
	default:
		return slog.LevelInfo
	}
}
