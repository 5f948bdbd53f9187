// Package config provides application configuration management.
// It loads settings from environment variables (optionally seeded from a
// .env file) and provides defaults for the office, feeds, LLM providers and
// server limits.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Default office identity and contact.
const (
	DefaultCommuneName  = "Xã Xuân Lũng"
	DefaultProvinceName = "Phú Thọ"
	DefaultHotline      = "0325224888"
)

// Supported LLM provider names for LLM_PROVIDERS.
const (
	ProviderOpenAI   = "openai"
	ProviderGemini   = "gemini"
	ProviderGroq     = "groq"
	ProviderCerebras = "cerebras"
)

// Config holds all application configuration
type Config struct {
	// Server Configuration
	Port             string
	LogLevel         string
	ShutdownTimeout  time.Duration
	ChatTimeout      time.Duration
	MaxMessageLength int      // Maximum question length in runes
	CORSOrigins      []string // Allowed origins for the chat widget ("*" = any)

	// Feed Configuration
	ProcedureFeedURL    string        // CSV export of the procedure sheet (empty = unavailable)
	DocumentFeedURL     string        // CSV export of the knowledge base sheet (empty = unavailable)
	FeedTTL             time.Duration // How long a downloaded feed is served from memory
	FeedFetchTimeout    time.Duration
	FeedRefreshInterval time.Duration // Proactive refresh period (0 = lazy refresh only)

	// Office Configuration
	CommuneName   string
	ProvinceName  string
	Hotline       string
	NoDataMessage string // Overrides the built-in "no data" reply when set
	BusyMessage   string // Overrides the built-in "service busy" reply when set

	// LLM Configuration
	LLM LLMConfig

	// Rate Limits (Token Bucket Algorithm, per client IP)
	RateLimitBurst        float64
	RateLimitRefillPerSec float64
	RateLimitDaily        int // 0 = disabled

	// Background Tasks
	WarmupTimeout time.Duration

	// Sentry
	SentryDSN         string
	SentryEnvironment string
	SentryRelease     string
	SentrySampleRate  float64

	// Better Stack
	BetterStackToken    string
	BetterStackEndpoint string

	// Metrics Authentication
	MetricsUsername string // Username for /metrics Basic Auth
	MetricsPassword string // Password for /metrics Basic Auth (empty = no auth)
}

// LLMConfig holds generation provider configuration.
type LLMConfig struct {
	Providers []string // Ordered provider chain; first is primary

	OpenAIAPIKey   string
	OpenAIModel    string
	GeminiAPIKey   string
	GeminiModel    string
	GroqAPIKey     string
	GroqModel      string
	CerebrasAPIKey string
	CerebrasModel  string

	Timeout     time.Duration // Bounds one generation including fallbacks
	MaxAttempts int           // Attempts per provider (1 = no retry)
	MaxTokens   int

	ProcedureTemperature float64
	DocumentTemperature  float64
}

// Load reads configuration from environment variables
// It attempts to load .env file first, then reads from env vars
func Load() (*Config, error) {
	cfg := LoadUnvalidated()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// LoadUnvalidated reads configuration without validating it.
// Used by tools that only need part of the configuration.
func LoadUnvalidated() *Config {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnv(EnvPort, "10000"),
		LogLevel:         getEnv(EnvLogLevel, "info"),
		ShutdownTimeout:  getDurationEnv(EnvShutdownTimeout, GracefulShutdown),
		ChatTimeout:      getDurationEnv(EnvChatTimeout, ChatProcessing),
		MaxMessageLength: getIntEnv(EnvMaxMessageLen, 2000),
		CORSOrigins:      getListEnv(EnvCORSOrigins, []string{"*"}),

		ProcedureFeedURL:    getEnv(EnvProcedureFeedURL, ""),
		DocumentFeedURL:     getEnv(EnvDocumentFeedURL, ""),
		FeedTTL:             getDurationEnv(EnvFeedTTL, FeedCacheTTL),
		FeedFetchTimeout:    getDurationEnv(EnvFeedFetchTimeout, FeedFetch),
		FeedRefreshInterval: getDurationEnv(EnvFeedRefreshInterval, 0),

		CommuneName:   getEnv(EnvCommuneName, DefaultCommuneName),
		ProvinceName:  getEnv(EnvProvinceName, DefaultProvinceName),
		Hotline:       getEnv(EnvHotline, DefaultHotline),
		NoDataMessage: getEnv(EnvNoDataMessage, ""),
		BusyMessage:   getEnv(EnvBusyMessage, ""),

		LLM: LLMConfig{
			OpenAIAPIKey:   getEnv(EnvOpenAIAPIKey, ""),
			OpenAIModel:    getEnv(EnvOpenAIModel, "gpt-4o-mini"),
			GeminiAPIKey:   getEnv(EnvGeminiAPIKey, ""),
			GeminiModel:    getEnv(EnvGeminiModel, "gemini-2.5-flash"),
			GroqAPIKey:     getEnv(EnvGroqAPIKey, ""),
			GroqModel:      getEnv(EnvGroqModel, "llama-3.3-70b-versatile"),
			CerebrasAPIKey: getEnv(EnvCerebrasAPIKey, ""),
			CerebrasModel:  getEnv(EnvCerebrasModel, "llama-3.3-70b"),

			Timeout:     getDurationEnv(EnvLLMTimeout, LLMGeneration),
			MaxAttempts: getIntEnv(EnvLLMMaxAttempts, 1),
			MaxTokens:   getIntEnv(EnvLLMMaxTokens, 1024),

			ProcedureTemperature: getFloatEnv(EnvProcedureTemperature, 0.2),
			DocumentTemperature:  getFloatEnv(EnvDocumentTemperature, 0.3),
		},

		RateLimitBurst:        getFloatEnv(EnvRateLimitBurst, 10),
		RateLimitRefillPerSec: getFloatEnv(EnvRateLimitRefill, 0.2), // 1 per 5s
		RateLimitDaily:        getIntEnv(EnvRateLimitDaily, 200),

		WarmupTimeout: getDurationEnv(EnvWarmupTimeout, WarmupReady),

		SentryDSN:         getEnv(EnvSentryDSN, ""),
		SentryEnvironment: getEnv(EnvSentryEnvironment, "production"),
		SentryRelease:     getEnv(EnvSentryRelease, ""),
		SentrySampleRate:  getFloatEnv(EnvSentrySampleRate, 1.0),

		BetterStackToken:    getEnv(EnvBetterStackToken, ""),
		BetterStackEndpoint: getEnv(EnvBetterStackEndpoint, ""),

		MetricsUsername: getEnv(EnvMetricsUsername, "prometheus"),
		MetricsPassword: getEnv(EnvMetricsPassword, ""),
	}

	cfg.LLM.Providers = getListEnv(EnvLLMProviders, cfg.LLM.configuredProviders())

	return cfg
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	var errs []error

	if c.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	}
	if c.CommuneName == "" {
		errs = append(errs, errors.New("TEN_XA is required"))
	}
	if c.ProvinceName == "" {
		errs = append(errs, errors.New("TEN_TINH is required"))
	}
	if c.FeedTTL <= 0 {
		errs = append(errs, fmt.Errorf("FEED_TTL must be positive, got %v", c.FeedTTL))
	}
	if c.FeedFetchTimeout <= 0 {
		errs = append(errs, fmt.Errorf("FEED_FETCH_TIMEOUT must be positive, got %v", c.FeedFetchTimeout))
	}
	if c.FeedRefreshInterval < 0 {
		errs = append(errs, fmt.Errorf("FEED_REFRESH_INTERVAL cannot be negative, got %v", c.FeedRefreshInterval))
	}
	if c.ChatTimeout <= 0 {
		errs = append(errs, fmt.Errorf("CHAT_TIMEOUT must be positive, got %v", c.ChatTimeout))
	}
	if c.MaxMessageLength <= 0 {
		errs = append(errs, fmt.Errorf("MAX_MESSAGE_LENGTH must be positive, got %d", c.MaxMessageLength))
	}
	if c.RateLimitBurst < 1 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_BURST must be at least 1, got %v", c.RateLimitBurst))
	}
	if c.RateLimitRefillPerSec <= 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_REFILL_PER_SEC must be positive, got %v", c.RateLimitRefillPerSec))
	}
	if c.RateLimitDaily < 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_DAILY cannot be negative, got %d", c.RateLimitDaily))
	}
	if err := c.LLM.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("llm config: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Validate checks the provider chain and generation parameters.
func (l *LLMConfig) Validate() error {
	var errs []error

	if len(l.Providers) == 0 {
		errs = append(errs, errors.New("at least one of OPENAI_API_KEY, GEMINI_API_KEY, GROQ_API_KEY, CEREBRAS_API_KEY is required"))
	}
	for _, p := range l.Providers {
		if !l.HasKey(p) {
			errs = append(errs, fmt.Errorf("provider %q listed in LLM_PROVIDERS has no API key", p))
		}
	}
	if l.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("LLM_TIMEOUT must be positive, got %v", l.Timeout))
	}
	if l.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("LLM_MAX_ATTEMPTS must be at least 1, got %d", l.MaxAttempts))
	}
	if l.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("LLM_MAX_TOKENS must be positive, got %d", l.MaxTokens))
	}
	for name, t := range map[string]float64{
		EnvProcedureTemperature: l.ProcedureTemperature,
		EnvDocumentTemperature:  l.DocumentTemperature,
	} {
		if t < 0 || t > 2 {
			errs = append(errs, fmt.Errorf("%s must be within [0, 2], got %v", name, t))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// HasKey reports whether the named provider has an API key configured.
func (l *LLMConfig) HasKey(provider string) bool {
	switch provider {
	case ProviderOpenAI:
		return l.OpenAIAPIKey != ""
	case ProviderGemini:
		return l.GeminiAPIKey != ""
	case ProviderGroq:
		return l.GroqAPIKey != ""
	case ProviderCerebras:
		return l.CerebrasAPIKey != ""
	default:
		return false
	}
}

// configuredProviders returns every provider with a key, OpenAI first.
func (l *LLMConfig) configuredProviders() []string {
	var out []string
	for _, p := range []string{ProviderOpenAI, ProviderGemini, ProviderGroq, ProviderCerebras} {
		if l.HasKey(p) {
			out = append(out, p)
		}
	}
	return out
}

// HasFeeds returns true if at least one feed URL is configured.
func (c *Config) HasFeeds() bool {
	return c.ProcedureFeedURL != "" || c.DocumentFeedURL != ""
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv retrieves integer environment variable with fallback to default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getFloatEnv retrieves float64 environment variable with fallback to default value
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getListEnv splits a comma-separated variable, dropping blanks.
func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for part := range strings.SplitSeq(value, ",") {
		if p := strings.ToLower(strings.TrimSpace(part)); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
