// Package genai generates answer text from an ordered list of chat messages.
//
// Architecture:
//   - OpenAI, Groq and Cerebras use github.com/openai/openai-go/v3
//     (Groq and Cerebras through their OpenAI-compatible endpoints)
//   - Gemini uses google.golang.org/genai
//
// Several providers can be chained; FallbackGenerator tries them in order.
package genai

import (
	"context"
	"time"
)

// Provider represents an LLM provider.
type Provider string

const (
	// ProviderOpenAI is the OpenAI chat completions API.
	ProviderOpenAI Provider = "openai"
	// ProviderGemini is Google's Gemini API.
	ProviderGemini Provider = "gemini"
	// ProviderGroq is Groq's OpenAI-compatible API.
	ProviderGroq Provider = "groq"
	// ProviderCerebras is Cerebras's OpenAI-compatible API.
	ProviderCerebras Provider = "cerebras"
)

// ProviderEndpoint is the base URL of each OpenAI-compatible provider other
// than OpenAI itself, which uses the SDK default.
var ProviderEndpoint = map[Provider]string{
	ProviderGroq:     "https://api.groq.com/openai/v1/",
	ProviderCerebras: "https://api.cerebras.ai/v1/",
}

// IsOpenAICompatible returns true if the provider speaks the OpenAI chat API.
func (p Provider) IsOpenAICompatible() bool {
	if p == ProviderOpenAI {
		return true
	}
	_, ok := ProviderEndpoint[p]
	return ok
}

// String returns the string representation of the provider.
func (p Provider) String() string {
	return string(p)
}

// Role is the author of a message.
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Message is one entry of a generation request.
type Message struct {
	Role    Role
	Content string
}

// SystemMessage returns an instruction message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage returns a message authored by the resident.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// Request is one generation call.
type Request struct {
	Messages    []Message
	Temperature float64
	MaxTokens   int // 0 uses the generator default
}

// Generator produces text for a request. An empty string with a nil error
// means the provider answered with no text.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
	// Provider returns the provider type for metrics.
	Provider() Provider
	// Close releases any resources held by the generator.
	Close() error
}

// RetryConfig defines retry behavior for one provider.
// Uses Full Jitter exponential backoff.
type RetryConfig struct {
	// MaxAttempts is the number of attempts including the first.
	MaxAttempts int

	// InitialDelay is the base delay before the first retry.
	InitialDelay time.Duration

	// MaxDelay caps the delay between retries.
	MaxDelay time.Duration
}

const (
	DefaultMaxTokens         = 1024
	DefaultInitialRetryDelay = 500 * time.Millisecond
	DefaultMaxRetryDelay     = 3 * time.Second
)

// DefaultRetryConfig returns a single-attempt configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  1,
		InitialDelay: DefaultInitialRetryDelay,
		MaxDelay:     DefaultMaxRetryDelay,
	}
}
