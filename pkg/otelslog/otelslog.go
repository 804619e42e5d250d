// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package otelslog provides a OpenTelemetry aware slog.Handler implementation.
package otelslog

import (
	"context"
	"log/slog"

	"github.com/z5labs/blockbuilder/pkg/slogfield"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Handler is an slog.Handler which correlates logs with traces. Every record
// logged with a valid span in its context gets the trace and span ids attached,
// and records at or above the event level are also added to the span as events.
type Handler struct {
	slog       slog.Handler
	eventLevel slog.Level
}

// Option configures a Handler.
type Option func(*Handler)

// EventLevel sets the minimum level at which records are copied onto
// the active span as events. The default is [slog.LevelWarn].
func EventLevel(lvl slog.Level) Option {
	return func(h *Handler) {
		h.eventLevel = lvl
	}
}

// NewHandler
func NewHandler(h slog.Handler, opts ...Option) *Handler {
	oh := &Handler{
		slog:       h,
		eventLevel: slog.LevelWarn,
	}
	for _, opt := range opts {
		opt(oh)
	}
	return oh
}

// New provides a simple wrapper for slog.New(NewHandler(h)).
func New(h slog.Handler, opts ...Option) *slog.Logger {
	return slog.New(NewHandler(h, opts...))
}

// Correlated reports whether h, or any handler it wraps, is a Handler.
// Wrapping handlers are followed through an Unwrap() slog.Handler method.
func Correlated(h slog.Handler) bool {
	for h != nil {
		if _, ok := h.(*Handler); ok {
			return true
		}
		u, ok := h.(interface{ Unwrap() slog.Handler })
		if !ok {
			return false
		}
		h = u.Unwrap()
	}
	return false
}

// Enabled implements the slog.Handler interface.
func (h *Handler) Enabled(ctx context.Context, lvl slog.Level) bool {
	return h.slog.Enabled(ctx, lvl)
}

// Handle implements the slog.Handler interface.
func (h *Handler) Handle(ctx context.Context, record slog.Record) error {
	span := trace.SpanFromContext(ctx)
	spanCtx := span.SpanContext()
	if !spanCtx.IsValid() {
		return h.slog.Handle(ctx, record)
	}

	if record.Level >= h.eventLevel && span.IsRecording() {
		attrs := []attribute.KeyValue{
			attribute.String("log.severity", record.Level.String()),
		}
		record.Attrs(func(a slog.Attr) bool {
			attrs = append(attrs, attribute.String(a.Key, a.Value.String()))
			return true
		})
		span.AddEvent(record.Message, trace.WithAttributes(attrs...))
	}

	r := record.Clone()
	r.AddAttrs(
		slog.Group(
			"otel",
			slogfield.String("trace_id", spanCtx.TraceID().String()),
			slogfield.String("span_id", spanCtx.SpanID().String()),
		),
	)
	return h.slog.Handle(ctx, r)
}

// WithAttrs implements the slog.Handler interface.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{
		slog:       h.slog.WithAttrs(attrs),
		eventLevel: h.eventLevel,
	}
}

// WithGroup implements the slog.Handler interface.
func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{
		slog:       h.slog.WithGroup(name),
		eventLevel: h.eventLevel,
	}
}
