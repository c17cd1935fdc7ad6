// Copyright © 2024 The ELPS authors

// Package logger is the structured logger shared by the wphooks packages.
//
// Library packages log diagnostics about their own operation (corpus files
// loaded, records skipped, files that could not be fully scanned) at debug
// or warn level. Findings about analyzed code are never logged; they are
// reported through a diagnostic.Sink.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// DefaultLogger is the logger used by the package-level functions.
var DefaultLogger *slog.Logger

var (
	output io.Writer = os.Stderr
	level            = new(slog.LevelVar)
)

func init() {
	level.Set(ParseLevel(os.Getenv("LOG_LEVEL")))
	DefaultLogger = newLogger()
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: level}))
}

// ParseLevel maps a level name to a slog level. Unknown names map to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetLevel changes the minimum level logged.
func SetLevel(l slog.Level) {
	level.Set(l)
}

// SetVerbose switches between debug and info level.
func SetVerbose(verbose bool) {
	if verbose {
		SetLevel(slog.LevelDebug)
	} else {
		SetLevel(slog.LevelInfo)
	}
}

// SetOutput redirects the default logger. It is meant for the CLI and for
// tests and must not be called concurrently with logging.
func SetOutput(w io.Writer) {
	output = w
	DefaultLogger = newLogger()
}

func Debug(msg string, args ...any) { DefaultLogger.Debug(msg, args...) }
func Info(msg string, args ...any)  { DefaultLogger.Info(msg, args...) }
func Warn(msg string, args ...any)  { DefaultLogger.Warn(msg, args...) }
func Error(msg string, args ...any) { DefaultLogger.Error(msg, args...) }

// DebugContext logs at debug level with ctx, so handlers can pick up the
// active trace span.
func DebugContext(ctx context.Context, msg string, args ...any) {
	DefaultLogger.DebugContext(ctx, msg, args...)
}

// WarnContext logs at warn level with ctx.
func WarnContext(ctx context.Context, msg string, args ...any) {
	DefaultLogger.WarnContext(ctx, msg, args...)
}
