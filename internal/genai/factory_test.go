package genai

import (
	"context"
	"testing"

	"github.com/xuanlung-gov/tthc-assistant/internal/config"
)

func TestNewGenerator(t *testing.T) {
	t.Parallel()
	cfg := config.LLMConfig{
		Providers:      []string{config.ProviderGroq, config.ProviderOpenAI, config.ProviderCerebras},
		OpenAIAPIKey:   "sk-test",
		OpenAIModel:    "gpt-4o-mini",
		GroqAPIKey:     "gsk-test",
		GroqModel:      "llama-3.3-70b-versatile",
		CerebrasModel:  "llama-3.3-70b", // no key: skipped
		MaxAttempts:    2,
		CerebrasAPIKey: "",
	}

	gen, err := NewGenerator(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}
	defer gen.Close()

	got := gen.Providers()
	if len(got) != 2 || got[0] != ProviderGroq || got[1] != ProviderOpenAI {
		t.Errorf("Providers() = %v, want [groq openai]", got)
	}
	if gen.Provider() != ProviderGroq {
		t.Errorf("Provider() = %v", gen.Provider())
	}
	if gen.retryConfig.MaxAttempts != 2 {
		t.Errorf("MaxAttempts = %d", gen.retryConfig.MaxAttempts)
	}
}

func TestNewGenerator_NoUsableProvider(t *testing.T) {
	t.Parallel()
	cfg := config.LLMConfig{Providers: []string{"unknown", config.ProviderOpenAI}}
	if _, err := NewGenerator(context.Background(), cfg, nil); err == nil {
		t.Fatal("expected error when no provider can be built")
	}
}

func TestNewGenerator_DuplicateProviders(t *testing.T) {
	t.Parallel()
	cfg := config.LLMConfig{
		Providers:    []string{"openai", " OpenAI ", config.ProviderOpenAI},
		OpenAIAPIKey: "sk-test",
		OpenAIModel:  "gpt-4o-mini",
	}

	gen, err := NewGenerator(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}
	defer gen.Close()

	if got := gen.Providers(); len(got) != 1 || got[0] != ProviderOpenAI {
		t.Errorf("Providers() = %v, want [openai]", got)
	}
}
