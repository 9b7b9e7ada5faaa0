// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		logger *slog.Logger
	}{
		{
			name:   "with custom logger",
			logger: slog.New(slog.NewTextHandler(os.Stdout, nil)),
		},
		{
			name:   "with nil logger should use default",
			logger: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := New(context.Background(), tt.logger)
			logger := Logger(ctx)

			if tt.logger == nil {
				assert.Same(t, DefaultLogger, logger)
				return
			}

			assert.NotNil(t, logger)
			assert.NotSame(t, DefaultLogger, logger)
		})
	}
}

func TestLogger(t *testing.T) {
	tests := []struct {
		name          string
		setupContext  func() context.Context
		expectDefault bool
	}{
		{
			name: "context with logger",
			setupContext: func() context.Context {
				logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
				return New(context.Background(), logger)
			},
			expectDefault: false,
		},
		{
			name: "context without logger",
			setupContext: func() context.Context {
				return context.Background()
			},
			expectDefault: true,
		},
		{
			name: "context with nil logger value",
			setupContext: func() context.Context {
				return context.WithValue(context.Background(), loggerKey{}, nil)
			},
			expectDefault: true,
		},
		{
			name: "context with wrong type value",
			setupContext: func() context.Context {
				return context.WithValue(context.Background(), loggerKey{}, "not a logger")
			},
			expectDefault: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := Logger(tt.setupContext())

			if tt.expectDefault {
				assert.Same(t, DefaultLogger, logger)
				return
			}

			assert.NotNil(t, logger)
			assert.NotSame(t, DefaultLogger, logger)
		})
	}
}

func TestLoggingFunctions(t *testing.T) {
	var buf bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	ctx := New(context.Background(), logger)

	tests := []struct {
		name     string
		logFunc  func(context.Context, string, ...any)
		message  string
		expected string
	}{
		{name: "Info logging", logFunc: Info, message: "test info message", expected: "INFO"},
		{name: "Debug logging", logFunc: Debug, message: "test debug message", expected: "DEBUG"},
		{name: "Warn logging", logFunc: Warn, message: "test warn message", expected: "WARN"},
		{name: "Error logging", logFunc: Error, message: "test error message", expected: "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.logFunc(ctx, tt.message, "key", "value")

			out := buf.String()
			assert.True(t, strings.Contains(out, tt.expected), "expected level %s in output %q", tt.expected, out)
			assert.True(t, strings.Contains(out, tt.message), "expected message in output %q", out)
		})
	}
}

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer

	ctx := NewWithWriter(context.Background(), &buf)
	Logger(ctx).Error("buffered message", "key", "value")

	assert.Contains(t, buf.String(), "buffered message")
}
