package slogutil

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/javi11/pngstash/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ParseLevel maps a config level name to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetupLogRotation configures slog with log rotation using lumberjack.
// Records always go to stderr, since stdout carries command output.
// If logConfig.File is set, they are also written to a rotating file.
func SetupLogRotation(logConfig config.LogConfig) *slog.Logger {
	return setupLogger(os.Stderr, logConfig)
}

func setupLogger(console io.Writer, logConfig config.LogConfig) *slog.Logger {
	writer := console

	if logConfig.File != "" {
		fileWriter := &lumberjack.Logger{
			Filename:   logConfig.File,
			MaxSize:    logConfig.MaxSize,    // MB
			MaxBackups: logConfig.MaxBackups, // number of old files
			MaxAge:     logConfig.MaxAge,     // days
			Compress:   logConfig.Compress,   // compress old files
		}
		writer = io.MultiWriter(console, fileWriter)
	}

	opts := &slog.HandlerOptions{
		Level: ParseLevel(logConfig.Level),
	}

	var handler slog.Handler
	if logConfig.Format == "json" {
		handler = slog.NewJSONHandler(writer, opts)
	} else {
		handler = slog.NewTextHandler(writer, opts)
	}

	// Wrap handler to support context data extraction
	return slog.New(WrapHandler(handler))
}
