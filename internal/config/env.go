// Package config defines environment variable keys for configuration.
package config

//nolint:gosec,revive // Environment variable keys are not credentials and do not need per-const comments.
const (
	// Server
	EnvPort            = "PORT"
	EnvLogLevel        = "LOG_LEVEL"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
	EnvChatTimeout     = "CHAT_TIMEOUT"
	EnvMaxMessageLen   = "MAX_MESSAGE_LENGTH"
	EnvCORSOrigins     = "CORS_ALLOWED_ORIGINS"

	// Feeds
	EnvProcedureFeedURL    = "TTHC_SHEET_URL"
	EnvDocumentFeedURL     = "KB_SHEET_URL"
	EnvFeedTTL             = "FEED_TTL"
	EnvFeedFetchTimeout    = "FEED_FETCH_TIMEOUT"
	EnvFeedRefreshInterval = "FEED_REFRESH_INTERVAL"

	// Office
	EnvCommuneName   = "TEN_XA"
	EnvProvinceName  = "TEN_TINH"
	EnvHotline       = "HOTLINE"
	EnvNoDataMessage = "NO_DATA_MESSAGE"
	EnvBusyMessage   = "BUSY_MESSAGE"

	// LLM
	EnvLLMProviders         = "LLM_PROVIDERS"
	EnvOpenAIAPIKey         = "OPENAI_API_KEY"
	EnvOpenAIModel          = "OPENAI_MODEL"
	EnvGeminiAPIKey         = "GEMINI_API_KEY"
	EnvGeminiModel          = "GEMINI_MODEL"
	EnvGroqAPIKey           = "GROQ_API_KEY"
	EnvGroqModel            = "GROQ_MODEL"
	EnvCerebrasAPIKey       = "CEREBRAS_API_KEY"
	EnvCerebrasModel        = "CEREBRAS_MODEL"
	EnvLLMTimeout           = "LLM_TIMEOUT"
	EnvLLMMaxAttempts       = "LLM_MAX_ATTEMPTS"
	EnvLLMMaxTokens         = "LLM_MAX_TOKENS"
	EnvProcedureTemperature = "PROCEDURE_TEMPERATURE"
	EnvDocumentTemperature  = "DOCUMENT_TEMPERATURE"

	// Rate Limits
	EnvRateLimitBurst  = "RATE_LIMIT_BURST"
	EnvRateLimitRefill = "RATE_LIMIT_REFILL_PER_SEC"
	EnvRateLimitDaily  = "RATE_LIMIT_DAILY"

	// Background Tasks
	EnvWarmupTimeout = "WARMUP_TIMEOUT"

	// Sentry Feature
	EnvSentryDSN         = "SENTRY_DSN"
	EnvSentryEnvironment = "SENTRY_ENVIRONMENT"
	EnvSentryRelease     = "SENTRY_RELEASE"
	EnvSentrySampleRate  = "SENTRY_SAMPLE_RATE"

	// Better Stack Feature
	EnvBetterStackToken    = "BETTERSTACK_SOURCE_TOKEN"
	EnvBetterStackEndpoint = "BETTERSTACK_ENDPOINT"

	// Metrics Auth Feature
	EnvMetricsUsername = "METRICS_USERNAME"
	EnvMetricsPassword = "METRICS_PASSWORD"
)
