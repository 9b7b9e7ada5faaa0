// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ctxlog provides a context-based logger that can be used to log messages
// with different log levels. It uses the slog package for structured logging.
// The log level is set based on the environment variable, which allows for
// dynamic configuration of the log level at runtime.
// The variable name for the log level is derived from the executable name.
// For example, if the executable is named "autobatch", the environment variable
// for the log level would be "AUTOBATCH_LOG_LEVEL". The log level can be set to
// "DEBUG", "INFO", "WARN", "ERROR", or any other value will default to "WARN".
package ctxlog

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

type loggerKey struct{}

// LevelVar holds the process-wide log level, settable at runtime.
var LevelVar = &slog.LevelVar{}

// DefaultLogger is a pretty-printing text logger used if no logger is provided.
var DefaultLogger = slog.New(NewPrettyHandler(&slog.HandlerOptions{
	Level: LevelVar,
},
	WithAutoColour(),
	WithDestinationWriter(os.Stdout),
))

// JSONLogger emits structured JSON records, for non-interactive consumers.
var JSONLogger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
	Level: LevelVar,
}))

func init() {
	LevelVar.Set(logLevelFromEnv())
}

// New creates a new context with the given logger.
// If logger is nil, it uses the default logger.
func New(ctx context.Context, logger *slog.Logger) context.Context {
	if logger == nil {
		logger = DefaultLogger
	}

	return context.WithValue(ctx, loggerKey{}, logger)
}

// NewWithWriter creates a new context whose logger writes to the supplied
// writer. Used by the TUI runner to buffer log output while the alternate
// screen is active.
func NewWithWriter(ctx context.Context, w io.Writer) context.Context {
	logger := slog.New(NewPrettyHandler(&slog.HandlerOptions{
		Level: LevelVar,
	},
		WithDestinationWriter(w),
	))

	return context.WithValue(ctx, loggerKey{}, logger)
}

// Logger returns the logger from the context, or the default logger if not found.
func Logger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(loggerKey{}).(*slog.Logger)
	if !ok || logger == nil {
		return DefaultLogger
	}

	return logger
}

// Info logs an info message with the given context.
func Info(ctx context.Context, msg string, args ...any) {
	Logger(ctx).Info(msg, args...)
}

// Debug logs a debug message with the given context.
func Debug(ctx context.Context, msg string, args ...any) {
	Logger(ctx).Debug(msg, args...)
}

// Warn logs a warning message with the given context.
func Warn(ctx context.Context, msg string, args ...any) {
	Logger(ctx).Warn(msg, args...)
}

// Error logs an error message with the given context.
func Error(ctx context.Context, msg string, args ...any) {
	Logger(ctx).Error(msg, args...)
}

func logLevelFromEnv() slog.Level {
	exec, _ := os.Executable()
	exec = filepath.Base(exec)
	ext := filepath.Ext(exec)

	if ext == ".exe" {
		exec = exec[:len(exec)-len(ext)]
	}

	envName := strings.ToUpper(exec) + "_LOG_LEVEL"

	levelStr := os.Getenv(envName)
	switch levelStr {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
