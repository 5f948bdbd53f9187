// Package ctxutil provides type-safe context value management.
// Uses private key types to prevent collisions.
package ctxutil

import (
	"context"
)

type contextKey string

const (
	requestIDKey contextKey = "ctxutil.requestID"
	clientIPKey  contextKey = "ctxutil.clientIP"
	routeKey     contextKey = "ctxutil.route"
)

// WithRequestID adds a request ID to the context for tracing.
// The ID is taken from X-Request-Id or generated per chat request.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
// Returns the request ID and true if found, empty string and false otherwise.
func GetRequestID(ctx context.Context) (string, bool) {
	requestID, ok := ctx.Value(requestIDKey).(string)
	return requestID, ok
}

// WithClientIP adds the caller's IP address to the context.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

// GetClientIP retrieves the caller's IP address from the context.
// Returns empty string if not set.
func GetClientIP(ctx context.Context) string {
	if v, ok := ctx.Value(clientIPKey).(string); ok {
		return v
	}
	return ""
}

// WithRoute records which answer path (procedure or document) handles the request.
func WithRoute(ctx context.Context, route string) context.Context {
	return context.WithValue(ctx, routeKey, route)
}

// GetRoute retrieves the answer path from the context.
func GetRoute(ctx context.Context) string {
	if v, ok := ctx.Value(routeKey).(string); ok {
		return v
	}
	return ""
}

// PreserveTracing creates a detached context that preserves tracing values.
// The new context is independent of the parent's cancellation and deadlines.
//
// Use for shared work that must not be aborted by one caller leaving, such
// as a feed refresh that several concurrent requests are waiting on.
func PreserveTracing(ctx context.Context) context.Context {
	newCtx := context.Background()

	if requestID, ok := GetRequestID(ctx); ok && requestID != "" {
		newCtx = WithRequestID(newCtx, requestID)
	}
	if ip := GetClientIP(ctx); ip != "" {
		newCtx = WithClientIP(newCtx, ip)
	}
	if route := GetRoute(ctx); route != "" {
		newCtx = WithRoute(newCtx, route)
	}

	return newCtx
}
