package app

import (
	"context"
	"fmt"

	"github.com/xuanlung-gov/tthc-assistant/internal/agency"
	"github.com/xuanlung-gov/tthc-assistant/internal/assistant"
	"github.com/xuanlung-gov/tthc-assistant/internal/catalog"
	"github.com/xuanlung-gov/tthc-assistant/internal/config"
	"github.com/xuanlung-gov/tthc-assistant/internal/feed"
	"github.com/xuanlung-gov/tthc-assistant/internal/genai"
	"github.com/xuanlung-gov/tthc-assistant/internal/logger"
	"github.com/xuanlung-gov/tthc-assistant/internal/metrics"
	"github.com/xuanlung-gov/tthc-assistant/internal/prompt"
)

// Feed labels used in logs, metrics and /readyz.
const (
	ProcedureFeedName = "tthc"
	DocumentFeedName  = "kb"
)

// Components is the answer pipeline and the feeds behind it. The server
// and the ask command share it.
type Components struct {
	Procedures *feed.Feed[catalog.Procedure]
	Documents  *feed.Feed[catalog.Document]
	Generator  *genai.FallbackGenerator
	Assistant  *assistant.Service
}

// BuildComponents wires feeds, generator and assistant from cfg. m may be nil.
func BuildComponents(ctx context.Context, cfg *config.Config, log *logger.Logger, m *metrics.Metrics) (*Components, error) {
	client := feed.NewClient(cfg.FeedFetchTimeout)

	procedures := feed.New(client, catalog.DecodeProcedures, feed.Options{
		Name:    ProcedureFeedName,
		URL:     cfg.ProcedureFeedURL,
		TTL:     cfg.FeedTTL,
		Timeout: cfg.FeedFetchTimeout,
		Metrics: m,
		Logger:  log,
	})
	documents := feed.New(client, catalog.DecodeDocuments, feed.Options{
		Name:    DocumentFeedName,
		URL:     cfg.DocumentFeedURL,
		TTL:     cfg.FeedTTL,
		Timeout: cfg.FeedFetchTimeout,
		Metrics: m,
		Logger:  log,
	})
	if !procedures.Configured() {
		log.Warn("TTHC_SHEET_URL not set, procedure questions get the no-data reply")
	}
	if !documents.Configured() {
		log.Warn("KB_SHEET_URL not set, document questions get the no-data reply")
	}

	generator, err := genai.NewGenerator(ctx, cfg.LLM, m)
	if err != nil {
		return nil, fmt.Errorf("generator: %w", err)
	}

	svc, err := assistant.NewService(assistant.Config{
		Procedures: procedures,
		Documents:  documents,
		Normalizer: agency.Normalizer{Commune: cfg.CommuneName, Province: cfg.ProvinceName},
		Prompts: prompt.NewBuilder(prompt.Config{
			Commune:  cfg.CommuneName,
			Province: cfg.ProvinceName,
			Hotline:  cfg.Hotline,
			NoData:   cfg.NoDataMessage,
			Busy:     cfg.BusyMessage,
		}),
		Generator:            generator,
		GenerationTimeout:    cfg.LLM.Timeout,
		MaxTokens:            cfg.LLM.MaxTokens,
		ProcedureTemperature: cfg.LLM.ProcedureTemperature,
		DocumentTemperature:  cfg.LLM.DocumentTemperature,
		Logger:               log,
		Metrics:              m,
	})
	if err != nil {
		_ = generator.Close()
		return nil, fmt.Errorf("assistant: %w", err)
	}

	return &Components{
		Procedures: procedures,
		Documents:  documents,
		Generator:  generator,
		Assistant:  svc,
	}, nil
}

// Close releases the generator clients.
func (c *Components) Close() error {
	if c == nil || c.Generator == nil {
		return nil
	}
	return c.Generator.Close()
}
