package logger

import (
	"context"
	"log/slog"

	"github.com/xuanlung-gov/tthc-assistant/internal/ctxutil"
)

// ContextHandler is a slog.Handler that extracts tracing values from the
// context and adds them as attributes to log records, so call sites do not
// have to pass request_id around by hand.
type ContextHandler struct {
	handler slog.Handler
}

// NewContextHandler creates a new ContextHandler that wraps the provided handler.
func NewContextHandler(handler slog.Handler) *ContextHandler {
	return &ContextHandler{handler: handler}
}

// Enabled reports whether the handler handles records at the given level.
func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle adds request_id, client_ip and route when present in ctx.
//
// Canceling the context does not affect record processing (per slog.Handler contract).
func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if requestID, ok := ctxutil.GetRequestID(ctx); ok && requestID != "" {
		r.AddAttrs(slog.String("request_id", requestID))
	}
	if ip := ctxutil.GetClientIP(ctx); ip != "" {
		r.AddAttrs(slog.String("client_ip", ip))
	}
	if route := ctxutil.GetRoute(ctx); route != "" {
		r.AddAttrs(slog.String("route", route))
	}

	return h.handler.Handle(ctx, r)
}

// WithAttrs returns a new ContextHandler whose attributes consist of
// both the receiver's attributes and the arguments.
func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{handler: h.handler.WithAttrs(attrs)}
}

// WithGroup returns a new ContextHandler with the given group name prepended
// to the current group name.
func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{handler: h.handler.WithGroup(name)}
}
