package genai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// openaiGenerator calls an OpenAI-compatible chat completions endpoint.
type openaiGenerator struct {
	client   openai.Client
	model    string
	provider Provider
}

// newOpenAIGenerator creates a generator for OpenAI, Groq or Cerebras.
// baseURL overrides the provider endpoint when non-empty; httpClient may be nil.
func newOpenAIGenerator(provider Provider, apiKey, model, baseURL string, httpClient *http.Client) (*openaiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%s: api key is empty", provider)
	}
	if model == "" {
		return nil, fmt.Errorf("%s: model is empty", provider)
	}
	if !provider.IsOpenAICompatible() {
		return nil, fmt.Errorf("unsupported OpenAI-compatible provider: %s", provider)
	}
	if baseURL == "" {
		baseURL = ProviderEndpoint[provider] // empty for OpenAI: SDK default
	}

	// Retries are handled by FallbackGenerator.
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}

	return &openaiGenerator{
		client:   openai.NewClient(opts...),
		model:    model,
		provider: provider,
	}, nil
}

func (g *openaiGenerator) Generate(ctx context.Context, req Request) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			messages = append(messages, openai.SystemMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	params := openai.ChatCompletionNewParams{
		Model:       g.model,
		Messages:    messages,
		Temperature: openai.Float(req.Temperature),
		MaxTokens:   openai.Int(int64(maxTokens)),
	}

	start := time.Now()
	resp, err := g.client.Chat.Completions.New(ctx, params)
	duration := time.Since(start)

	if err != nil {
		status := 0
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			status = apiErr.StatusCode
		}
		return "", WrapError(fmt.Errorf("chat completion failed: %w", err), g.provider, status)
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)

	if resp.Usage.TotalTokens > 0 {
		slog.DebugContext(ctx, "generation completed",
			"provider", g.provider,
			"model", g.model,
			"input_tokens", resp.Usage.PromptTokens,
			"output_tokens", resp.Usage.CompletionTokens,
			"duration_ms", duration.Milliseconds())
	}

	return text, nil
}

func (g *openaiGenerator) Provider() Provider { return g.provider }

// Close is a no-op; the openai-go client holds no resources.
func (g *openaiGenerator) Close() error { return nil }
