package genai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuanlung-gov/tthc-assistant/internal/config"
	"github.com/xuanlung-gov/tthc-assistant/internal/metrics"
	"github.com/xuanlung-gov/tthc-assistant/internal/sliceutil"
)

// NewGenerator builds the provider chain in cfg.Providers order. A provider
// listed twice is used once. Providers without a key or that fail to
// initialize are skipped with a warning; an error is returned only when none
// is usable.
func NewGenerator(ctx context.Context, cfg config.LLMConfig, m *metrics.Metrics) (*FallbackGenerator, error) {
	var generators []Generator

	providers := sliceutil.Deduplicate(cfg.Providers, func(p string) string {
		return strings.ToLower(strings.TrimSpace(p))
	})
	for _, name := range providers {
		name = strings.ToLower(strings.TrimSpace(name))
		gen, err := newProviderGenerator(ctx, Provider(name), cfg)
		if err != nil {
			slog.WarnContext(ctx, "failed to create generator", "provider", name, "error", err)
			continue
		}
		generators = append(generators, gen)
	}

	if len(generators) == 0 {
		return nil, errors.New("no LLM provider configured")
	}

	retry := DefaultRetryConfig()
	retry.MaxAttempts = cfg.MaxAttempts

	chain := NewFallbackGenerator(retry, m, generators...)
	slog.InfoContext(ctx, "generator configured",
		"primary", chain.Provider(),
		"chain", chain.Providers())
	return chain, nil
}

func newProviderGenerator(ctx context.Context, provider Provider, cfg config.LLMConfig) (Generator, error) {
	switch provider {
	case ProviderOpenAI:
		return newOpenAIGenerator(provider, cfg.OpenAIAPIKey, cfg.OpenAIModel, "", nil)
	case ProviderGroq:
		return newOpenAIGenerator(provider, cfg.GroqAPIKey, cfg.GroqModel, "", nil)
	case ProviderCerebras:
		return newOpenAIGenerator(provider, cfg.CerebrasAPIKey, cfg.CerebrasModel, "", nil)
	case ProviderGemini:
		return newGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, nil)
	default:
		return nil, fmt.Errorf("unknown provider %q", provider)
	}
}
