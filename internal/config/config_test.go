package config

import (
	"slices"
	"strings"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Setenv(EnvOpenAIAPIKey, "sk-test")
	t.Setenv(EnvProcedureFeedURL, "https://example.com/tthc.csv")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.ProcedureFeedURL != "https://example.com/tthc.csv" {
		t.Errorf("ProcedureFeedURL = %q", cfg.ProcedureFeedURL)
	}
	if cfg.DocumentFeedURL != "" {
		t.Errorf("DocumentFeedURL = %q, want empty", cfg.DocumentFeedURL)
	}

	// Defaults
	if cfg.Port != "10000" {
		t.Errorf("Expected default port '10000', got '%s'", cfg.Port)
	}
	if cfg.FeedTTL != 5*time.Minute {
		t.Errorf("Expected default feed TTL 5m, got %v", cfg.FeedTTL)
	}
	if cfg.CommuneName != DefaultCommuneName || cfg.ProvinceName != DefaultProvinceName {
		t.Errorf("office = %q/%q", cfg.CommuneName, cfg.ProvinceName)
	}
	if cfg.LLM.OpenAIModel != "gpt-4o-mini" {
		t.Errorf("Expected default model gpt-4o-mini, got %s", cfg.LLM.OpenAIModel)
	}
	if cfg.LLM.ProcedureTemperature != 0.2 || cfg.LLM.DocumentTemperature != 0.3 {
		t.Errorf("temperatures = %v/%v", cfg.LLM.ProcedureTemperature, cfg.LLM.DocumentTemperature)
	}
	if cfg.LLM.MaxAttempts != 1 {
		t.Errorf("Expected no generation retry by default, got %d attempts", cfg.LLM.MaxAttempts)
	}
	if !slices.Equal(cfg.LLM.Providers, []string{ProviderOpenAI}) {
		t.Errorf("Providers = %v", cfg.LLM.Providers)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv(EnvGeminiAPIKey, "g-key")
	t.Setenv(EnvGroqAPIKey, "groq-key")
	t.Setenv(EnvLLMProviders, " Groq , gemini,")
	t.Setenv(EnvFeedTTL, "90s")
	t.Setenv(EnvCommuneName, "Xã Thử Nghiệm")
	t.Setenv(EnvCORSOrigins, "https://a.gov.vn,https://b.gov.vn")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if !slices.Equal(cfg.LLM.Providers, []string{ProviderGroq, ProviderGemini}) {
		t.Errorf("Providers = %v", cfg.LLM.Providers)
	}
	if cfg.FeedTTL != 90*time.Second {
		t.Errorf("FeedTTL = %v", cfg.FeedTTL)
	}
	if cfg.CommuneName != "Xã Thử Nghiệm" {
		t.Errorf("CommuneName = %q", cfg.CommuneName)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestLoad_InvalidDurationFallsBack(t *testing.T) {
	t.Setenv(EnvOpenAIAPIKey, "sk-test")
	t.Setenv(EnvFeedTTL, "five minutes")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.FeedTTL != FeedCacheTTL {
		t.Errorf("FeedTTL = %v, want default %v", cfg.FeedTTL, FeedCacheTTL)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Port:                  "10000",
			ChatTimeout:           time.Second,
			MaxMessageLength:      100,
			FeedTTL:               time.Minute,
			FeedFetchTimeout:      time.Second,
			CommuneName:           "Xã A",
			ProvinceName:          "Tỉnh B",
			RateLimitBurst:        5,
			RateLimitRefillPerSec: 1,
			LLM: LLMConfig{
				Providers:            []string{ProviderOpenAI},
				OpenAIAPIKey:         "sk",
				Timeout:              time.Second,
				MaxAttempts:          1,
				MaxTokens:            100,
				ProcedureTemperature: 0.2,
				DocumentTemperature:  0.3,
			},
		}
	}

	tests := []struct {
		name        string
		mutate      func(*Config)
		errContains string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{
			name:        "no providers",
			mutate:      func(c *Config) { c.LLM.Providers = nil },
			errContains: "OPENAI_API_KEY",
		},
		{
			name:        "provider without key",
			mutate:      func(c *Config) { c.LLM.Providers = []string{ProviderGemini} },
			errContains: `provider "gemini"`,
		},
		{
			name:        "zero ttl",
			mutate:      func(c *Config) { c.FeedTTL = 0 },
			errContains: "FEED_TTL",
		},
		{
			name:        "temperature out of range",
			mutate:      func(c *Config) { c.LLM.DocumentTemperature = 3 },
			errContains: EnvDocumentTemperature,
		},
		{
			name:        "missing commune",
			mutate:      func(c *Config) { c.CommuneName = "" },
			errContains: "TEN_XA",
		},
		{
			name: "multiple problems are joined",
			mutate: func(c *Config) {
				c.Port = ""
				c.MaxMessageLength = 0
			},
			errContains: "MAX_MESSAGE_LENGTH",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errContains == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.errContains)
			}
			if !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("Validate() = %v, want it to contain %q", err, tt.errContains)
			}
		})
	}
}

func TestGetListEnv(t *testing.T) {
	t.Setenv("TEST_LIST", " , ,")
	if got := getListEnv("TEST_LIST", []string{"x"}); !slices.Equal(got, []string{"x"}) {
		t.Errorf("blank list should fall back to default, got %v", got)
	}
}
