// Package sentry initializes error reporting and captures hard failures of
// the answer pipeline. Reporting is disabled when no DSN is configured.
package sentry

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/xuanlung-gov/tthc-assistant/internal/ctxutil"
)

// Config holds Sentry configuration.
type Config struct {
	// DSN of the Sentry (or Sentry-compatible) project. Empty disables reporting.
	DSN string

	// Environment identifies the deployment, e.g. "production".
	Environment string

	// Release identifies the application version.
	Release string

	// SampleRate controls error sampling (0.0-1.0, default 1.0).
	SampleRate float64

	// Debug enables Sentry SDK debug logging.
	Debug bool
}

// Initialize sets up the Sentry SDK. An empty DSN is not an error.
func Initialize(cfg Config) error {
	if cfg.DSN == "" {
		return nil
	}

	sampleRate := cfg.SampleRate
	if sampleRate <= 0 || sampleRate > 1 {
		sampleRate = 1.0
	}

	return sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		SampleRate:       sampleRate,
		Debug:            cfg.Debug,
		AttachStacktrace: true,
	})
}

// Flush waits for buffered events to be sent.
// Returns true if all events were sent within the timeout.
func Flush(timeout time.Duration) bool {
	return sentry.Flush(timeout)
}

// IsEnabled returns true if Sentry is initialized and active.
func IsEnabled() bool {
	return sentry.CurrentHub().Client() != nil
}

// CaptureExceptionWithContext reports err on the request hub (set by the
// sentrygin middleware) or the global hub, tagged with the request id and
// answer route found in ctx.
func CaptureExceptionWithContext(ctx context.Context, err error) {
	if err == nil {
		return
	}
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub().Clone()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		if id, ok := ctxutil.GetRequestID(ctx); ok {
			scope.SetTag("request_id", id)
		}
		if route := ctxutil.GetRoute(ctx); route != "" {
			scope.SetTag("route", route)
		}
		hub.CaptureException(err)
	})
}
