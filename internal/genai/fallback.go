package genai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuanlung-gov/tthc-assistant/internal/metrics"
)

// FallbackGenerator tries each generator in order. Every generator gets up
// to RetryConfig.MaxAttempts attempts for transient errors; a permanent
// error or a cancelled context stops the chain.
type FallbackGenerator struct {
	generators  []Generator
	retryConfig RetryConfig
	metrics     *metrics.Metrics
}

// NewFallbackGenerator creates a chain. m may be nil.
func NewFallbackGenerator(cfg RetryConfig, m *metrics.Metrics, generators ...Generator) *FallbackGenerator {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &FallbackGenerator{
		generators:  generators,
		retryConfig: cfg,
		metrics:     m,
	}
}

// Generate returns the first successful result. An empty string from a
// provider is a success; the caller decides what empty means.
func (f *FallbackGenerator) Generate(ctx context.Context, req Request) (string, error) {
	if f == nil || len(f.generators) == 0 {
		return "", errors.New("no generator configured")
	}

	var lastErr error
	for i, gen := range f.generators {
		if i > 0 {
			prev := f.generators[i-1].Provider()
			slog.InfoContext(ctx, "falling back to next provider",
				"from", prev,
				"to", gen.Provider(),
				"error", lastErr)
			f.metrics.RecordLLMFallback(prev.String(), gen.Provider().String())
		}

		text, err := f.generateWithRetry(ctx, gen, req)
		if err == nil {
			return text, nil
		}
		lastErr = err

		action := ClassifyError(err)
		slog.WarnContext(ctx, "generation failed",
			"provider", gen.Provider(),
			"action", action,
			"error", err)
		if action == ActionFail || ctx.Err() != nil {
			return "", err
		}
	}

	if len(f.generators) == 1 {
		return "", lastErr
	}
	return "", fmt.Errorf("all providers failed: %w", lastErr)
}

func (f *FallbackGenerator) generateWithRetry(ctx context.Context, gen Generator, req Request) (string, error) {
	var lastErr error

	for attempt := range f.retryConfig.MaxAttempts {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		start := time.Now()
		text, err := gen.Generate(ctx, req)
		if err == nil {
			f.metrics.RecordLLM(gen.Provider().String(), "success", time.Since(start).Seconds())
			return text, nil
		}
		f.metrics.RecordLLM(gen.Provider().String(), "error", time.Since(start).Seconds())
		lastErr = err

		if ClassifyError(err) != ActionRetry || attempt == f.retryConfig.MaxAttempts-1 {
			break
		}

		backoff := CalculateBackoff(attempt+1, f.retryConfig.InitialDelay, f.retryConfig.MaxDelay)
		if !HasSufficientBudget(ctx, backoff) {
			return "", fmt.Errorf("timeout during retry: %w", lastErr)
		}

		slog.DebugContext(ctx, "retrying generation",
			"provider", gen.Provider(),
			"attempt", attempt+1,
			"backoff", backoff,
			"error", err)

		if err := Sleep(ctx, backoff); err != nil {
			return "", err
		}
	}

	return "", lastErr
}

// Provider returns the primary provider.
func (f *FallbackGenerator) Provider() Provider {
	if f == nil || len(f.generators) == 0 {
		return ""
	}
	return f.generators[0].Provider()
}

// Providers returns the chain order.
func (f *FallbackGenerator) Providers() []Provider {
	out := make([]Provider, 0, len(f.generators))
	for _, g := range f.generators {
		out = append(out, g.Provider())
	}
	return out
}

// Close closes every generator in the chain.
func (f *FallbackGenerator) Close() error {
	if f == nil {
		return nil
	}
	var errs []error
	for _, g := range f.generators {
		if err := g.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
