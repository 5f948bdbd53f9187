package genai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

// geminiGenerator calls the Gemini API. System messages become the system
// instruction; user messages become the contents.
type geminiGenerator struct {
	client *genai.Client
	model  string
}

func newGeminiGenerator(ctx context.Context, apiKey, model string, httpClient *http.Client) (*geminiGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: api key is empty")
	}
	if model == "" {
		return nil, errors.New("gemini: model is empty")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &geminiGenerator{client: client, model: model}, nil
}

// splitMessages joins system messages into one instruction and keeps user
// messages in order.
func splitMessages(messages []Message) (string, []*genai.Content) {
	var system []string
	var contents []*genai.Content
	for _, m := range messages {
		if m.Role == RoleSystem {
			system = append(system, m.Content)
			continue
		}
		contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
	}
	return strings.Join(system, "\n\n"), contents
}

func (g *geminiGenerator) Generate(ctx context.Context, req Request) (string, error) {
	instruction, contents := splitMessages(req.Messages)

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(req.Temperature)),
		MaxOutputTokens: int32(maxTokens), //nolint:gosec // bounded by config validation
	}
	if instruction != "" {
		config.SystemInstruction = genai.NewContentFromText(instruction, genai.RoleUser)
	}

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	duration := time.Since(start)

	if err != nil {
		return "", WrapError(fmt.Errorf("generate content failed: %w", err), ProviderGemini, geminiStatus(err))
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", nil
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" && !part.Thought {
			text.WriteString(part.Text)
		}
	}

	if resp.UsageMetadata != nil {
		slog.DebugContext(ctx, "generation completed",
			"provider", ProviderGemini,
			"model", g.model,
			"input_tokens", resp.UsageMetadata.PromptTokenCount,
			"output_tokens", resp.UsageMetadata.CandidatesTokenCount,
			"duration_ms", duration.Milliseconds())
	}

	return strings.TrimSpace(text.String()), nil
}

func geminiStatus(err error) int {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return apiErrPtr.Code
	}
	return 0
}

func (g *geminiGenerator) Provider() Provider { return ProviderGemini }

// Close is a no-op; genai.Client needs no cleanup.
func (g *geminiGenerator) Close() error { return nil }
