// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/TylerBrock/colorjson"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	// ErrMarshalAttribute is returned when an error occurs while marshaling an attribute.
	ErrMarshalAttribute = errors.New("error when marshaling attribute")
	// ErrIoWrite is returned when an error occurs while writing to the output.
	ErrIoWrite = errors.New("error when writing to output")
)

const (
	// TimeFormat is the format used for timestamps in log messages.
	TimeFormat = "[15:04:05.000]"
)

var jsonFormatter = colorjson.NewFormatter()

func init() {
	jsonFormatter.Indent = 2
	jsonFormatter.DisabledColor = !term.IsTerminal(int(os.Stdout.Fd()))
}

var (
	debugStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	infoStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	timeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	msgStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
)

// PrettyHandler is a custom slog handler that formats log messages to the console in a pretty way.
type PrettyHandler struct {
	h                slog.Handler
	r                func([]string, slog.Attr) slog.Attr
	b                *bytes.Buffer
	m                *sync.Mutex
	writer           io.Writer
	colour           bool
	outputEmptyAttrs bool
}

// Enabled checks if the handler is enabled for the given level.
func (h *PrettyHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.h.Enabled(ctx, level)
}

// WithAttrs creates a new handler with the given attributes.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &PrettyHandler{h: h.h.WithAttrs(attrs), b: h.b, r: h.r, m: h.m, writer: h.writer, colour: h.colour}
}

// WithGroup creates a new handler with the given group name.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	return &PrettyHandler{h: h.h.WithGroup(name), b: h.b, r: h.r, m: h.m, writer: h.writer, colour: h.colour}
}

func (h *PrettyHandler) computeAttrs(
	ctx context.Context,
	r slog.Record,
) (map[string]any, error) {
	h.m.Lock()
	defer func() {
		h.b.Reset()
		h.m.Unlock()
	}()

	if err := h.h.Handle(ctx, r); err != nil {
		return nil, fmt.Errorf("error when calling inner handler's Handle: %w", err)
	}

	var attrs map[string]any

	err := json.Unmarshal(h.b.Bytes(), &attrs)
	if err != nil {
		return nil, fmt.Errorf("error when unmarshaling inner handler's Handle result: %w", err)
	}

	return attrs, nil
}

func (h *PrettyHandler) render(s string, style lipgloss.Style) string {
	if !h.colour {
		return s
	}

	return style.Render(s)
}

// Handle implements the slog.Handler interface for PrettyHandler.
func (h *PrettyHandler) Handle(ctx context.Context, r slog.Record) error {
	var level string

	levelAttr := slog.Attr{
		Key:   slog.LevelKey,
		Value: slog.AnyValue(r.Level),
	}
	if h.r != nil {
		levelAttr = h.r([]string{}, levelAttr)
	}

	if !levelAttr.Equal(slog.Attr{}) {
		level = levelAttr.Value.String() + ":"

		switch {
		case r.Level <= slog.LevelDebug:
			level = h.render(level, debugStyle)
		case r.Level <= slog.LevelInfo:
			level = h.render(level, infoStyle)
		case r.Level < slog.LevelError:
			level = h.render(level, warnStyle)
		default:
			level = h.render(level, errorStyle)
		}
	}

	var timestamp string

	timeAttr := slog.Attr{
		Key:   slog.TimeKey,
		Value: slog.StringValue(r.Time.Format(TimeFormat)),
	}
	if h.r != nil {
		timeAttr = h.r([]string{}, timeAttr)
	}

	if !timeAttr.Equal(slog.Attr{}) {
		timestamp = h.render(timeAttr.Value.String(), timeStyle)
	}

	var msg string

	msgAttr := slog.Attr{
		Key:   slog.MessageKey,
		Value: slog.StringValue(r.Message),
	}
	if h.r != nil {
		msgAttr = h.r([]string{}, msgAttr)
	}

	if !msgAttr.Equal(slog.Attr{}) {
		msg = h.render(msgAttr.Value.String(), msgStyle)
	}

	attrs, err := h.computeAttrs(ctx, r)
	if err != nil {
		return err
	}

	var attrsAsBytes []byte

	if h.outputEmptyAttrs || len(attrs) > 0 {
		attrsAsBytes, err = jsonFormatter.Marshal(attrs)
		if err != nil {
			return errors.Join(ErrMarshalAttribute, err)
		}
	}

	out := strings.Builder{}
	if len(timestamp) > 0 {
		out.WriteString(timestamp)
		out.WriteString(" ")
	}

	if len(level) > 0 {
		out.WriteString(level)
		out.WriteString(" ")
	}

	if len(msg) > 0 {
		out.WriteString(msg)
		out.WriteString(" ")
	}

	if len(attrsAsBytes) > 0 {
		out.WriteString(string(attrsAsBytes))
	}

	out.WriteString("\n")

	_, err = io.WriteString(h.writer, out.String())
	if err != nil {
		return errors.Join(ErrIoWrite, err)
	}

	return nil
}

func suppressDefaults(next func([]string, slog.Attr) slog.Attr,
) func([]string, slog.Attr) slog.Attr {
	return func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == slog.TimeKey ||
			a.Key == slog.LevelKey ||
			a.Key == slog.MessageKey {
			return slog.Attr{}
		}

		if next == nil {
			return a
		}

		return next(groups, a)
	}
}

// NewPrettyHandler creates a new PrettyHandler with the given options.
func NewPrettyHandler(handlerOptions *slog.HandlerOptions, options ...Option) *PrettyHandler {
	if handlerOptions == nil {
		handlerOptions = &slog.HandlerOptions{}
	}

	buf := &bytes.Buffer{}
	handler := &PrettyHandler{
		b: buf,
		h: slog.NewJSONHandler(buf, &slog.HandlerOptions{
			Level:       handlerOptions.Level,
			AddSource:   handlerOptions.AddSource,
			ReplaceAttr: suppressDefaults(handlerOptions.ReplaceAttr),
		}),
		r: handlerOptions.ReplaceAttr,
		m: &sync.Mutex{},
	}

	for _, opt := range options {
		opt(handler)
	}

	return handler
}

// Option implements a functional options pattern for PrettyHandler.
type Option func(h *PrettyHandler)

// WithDestinationWriter sets the destination writer for the PrettyHandler.
func WithDestinationWriter(writer io.Writer) Option {
	return func(h *PrettyHandler) {
		h.writer = writer
	}
}

// WithColour enables colour output for the PrettyHandler.
func WithColour() Option {
	return func(h *PrettyHandler) {
		h.colour = true
	}
}

// WithAutoColour enables colour output when stdout is a terminal and the
// NO_COLOR convention does not forbid it.
func WithAutoColour() Option {
	return func(h *PrettyHandler) {
		h.colour = os.Getenv("NO_COLOR") == "" && term.IsTerminal(int(os.Stdout.Fd()))
	}
}

// WithOutputEmptyAttrs enables output of empty attributes for the PrettyHandler.
func WithOutputEmptyAttrs() Option {
	return func(h *PrettyHandler) {
		h.outputEmptyAttrs = true
	}
}
