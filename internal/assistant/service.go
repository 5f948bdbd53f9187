// Package assistant answers one citizen question: it parses the mode tag,
// picks the procedure or document path, matches a record from the cached
// feed, asks the generator for an answer and shapes the reply.
//
// Both paths run the same pipeline; they differ only in the strategy that
// supplies records, the matcher, the prompt and the reply shaping.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/xuanlung-gov/tthc-assistant/internal/agency"
	"github.com/xuanlung-gov/tthc-assistant/internal/catalog"
	"github.com/xuanlung-gov/tthc-assistant/internal/ctxutil"
	domerrors "github.com/xuanlung-gov/tthc-assistant/internal/errors"
	"github.com/xuanlung-gov/tthc-assistant/internal/genai"
	"github.com/xuanlung-gov/tthc-assistant/internal/logger"
	"github.com/xuanlung-gov/tthc-assistant/internal/metrics"
	"github.com/xuanlung-gov/tthc-assistant/internal/mode"
	"github.com/xuanlung-gov/tthc-assistant/internal/prompt"
	"github.com/xuanlung-gov/tthc-assistant/internal/stringutil"
)

// Source supplies the current records of one feed. *feed.Feed satisfies it.
// A nil slice with a nil error means the feed is not configured.
type Source[T any] interface {
	Name() string
	Records(ctx context.Context) ([]T, error)
}

// Outcome labels how a question was resolved.
type Outcome string

const (
	OutcomeAnswered         Outcome = "answered"
	OutcomeNoMatch          Outcome = "no_match"
	OutcomeNoData           Outcome = "no_data"
	OutcomeFeedError        Outcome = "feed_error"
	OutcomeEmptyGeneration  Outcome = "empty_generation"
	OutcomeGenerationFailed Outcome = "generation_failed"
)

// Answer is the reply to one question.
type Answer struct {
	Reply   string
	Label   string     // mode label after parsing
	Route   mode.Route // answer path taken
	Outcome Outcome
	Matched string // name or title of the matched record, if any
}

// Config holds the collaborators of a Service.
type Config struct {
	Procedures Source[catalog.Procedure]
	Documents  Source[catalog.Document]

	// Zero values use catalog.ProcedureMatcher and catalog.DocumentMatcher.
	ProcedureMatcher catalog.Matcher[catalog.Procedure]
	DocumentMatcher  catalog.Matcher[catalog.Document]

	Normalizer agency.Normalizer
	Prompts    *prompt.Builder
	Generator  genai.Generator

	GenerationTimeout    time.Duration // 0 = bounded by the caller's context only
	MaxTokens            int
	ProcedureTemperature float64
	DocumentTemperature  float64

	Logger  *logger.Logger
	Metrics *metrics.Metrics
}

// Service is safe for concurrent use.
type Service struct {
	procedure strategy[catalog.Procedure]
	document  strategy[catalog.Document]

	prompts   *prompt.Builder
	generator genai.Generator
	timeout   time.Duration
	maxTokens int
	logger    *logger.Logger
	metrics   *metrics.Metrics
}

// strategy is everything that differs between the two answer paths.
type strategy[T any] struct {
	route       mode.Route
	source      Source[T]
	matcher     catalog.Matcher[T]
	temperature float64
	name        func(T) string
	messages    func(record T, question string) []genai.Message
	shape       func(reply string, record T) string
}

// NewService wires the two answer paths.
func NewService(cfg Config) (*Service, error) {
	if cfg.Prompts == nil {
		return nil, errors.New("assistant: prompt builder is required")
	}
	if cfg.Generator == nil {
		return nil, errors.New("assistant: generator is required")
	}
	if cfg.ProcedureMatcher == nil {
		cfg.ProcedureMatcher = catalog.ProcedureMatcher{}
	}
	if cfg.DocumentMatcher == nil {
		cfg.DocumentMatcher = catalog.DocumentMatcher{}
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewWithWriter("error", io.Discard)
	}

	b := cfg.Prompts
	norm := cfg.Normalizer

	return &Service{
		procedure: strategy[catalog.Procedure]{
			route:       mode.RouteProcedure,
			source:      cfg.Procedures,
			matcher:     cfg.ProcedureMatcher,
			temperature: cfg.ProcedureTemperature,
			name:        func(p catalog.Procedure) string { return p.Name },
			messages: func(p catalog.Procedure, question string) []genai.Message {
				return b.ProcedureMessages(p, norm.Normalize(p.Agency1), norm.Normalize(p.Agency2), question)
			},
			shape: func(reply string, _ catalog.Procedure) string { return reply },
		},
		document: strategy[catalog.Document]{
			route:       mode.RouteDocument,
			source:      cfg.Documents,
			matcher:     cfg.DocumentMatcher,
			temperature: cfg.DocumentTemperature,
			name:        func(d catalog.Document) string { return d.Title },
			messages:    b.DocumentMessages,
			shape:       prompt.AppendLinks,
		},
		prompts:   b,
		generator: cfg.Generator,
		timeout:   cfg.GenerationTimeout,
		maxTokens: cfg.MaxTokens,
		logger:    cfg.Logger.WithModule("assistant"),
		metrics:   cfg.Metrics,
	}, nil
}

// NoData is the reply for questions the office data cannot answer.
func (s *Service) NoData() string { return s.prompts.NoData() }

// Busy is the reply when the generator is unavailable.
func (s *Service) Busy() string { return s.prompts.Busy() }

// Answer resolves raw, which may start with a mode tag.
//
// Feed failures, empty feeds, unmatched questions and empty generations all
// yield the no-data reply with a nil error. A hard generator failure yields
// an error that wraps errors.ErrGeneration and carries the busy reply as its
// user message; the returned Answer is still populated.
func (s *Service) Answer(ctx context.Context, raw string) (*Answer, error) {
	start := time.Now()
	q := mode.Parse(raw)
	route := q.Route()
	ctx = ctxutil.WithRoute(ctx, string(route))

	var ans *Answer
	var err error
	switch route {
	case mode.RouteProcedure:
		ans, err = run(ctx, s, s.procedure, q)
	default:
		ans, err = run(ctx, s, s.document, q)
	}

	s.metrics.RecordChat(string(route), string(ans.Outcome), time.Since(start).Seconds())
	s.logger.WithFields(map[string]any{
		"label":       ans.Label,
		"outcome":     ans.Outcome,
		"matched":     ans.Matched,
		"duration_ms": time.Since(start).Milliseconds(),
	}).InfoContext(ctx, "Question answered")
	return ans, err
}

func run[T any](ctx context.Context, s *Service, st strategy[T], q mode.Query) (*Answer, error) {
	ans := &Answer{Label: q.Label, Route: st.route}
	noData := func(o Outcome, reason error) (*Answer, error) {
		s.logger.WithError(reason).WithField("feed", sourceName(st.source)).
			DebugContext(ctx, "Answering with no-data reply")
		ans.Outcome = o
		ans.Reply = s.prompts.NoData()
		return ans, nil
	}

	if st.source == nil {
		return noData(OutcomeNoData, domerrors.ErrFeedUnavailable)
	}
	records, err := st.source.Records(ctx)
	if err != nil {
		s.logger.WithError(err).WarnContext(ctx, "Feed unavailable, answering with no-data reply")
		return noData(OutcomeFeedError, err)
	}
	if records == nil {
		return noData(OutcomeNoData, domerrors.ErrFeedUnavailable)
	}
	if len(records) == 0 {
		return noData(OutcomeNoData, domerrors.ErrEmptyFeed)
	}

	record, ok := st.matcher.Match(q.Question, records)
	if !ok {
		return noData(OutcomeNoMatch, domerrors.ErrNoMatch)
	}
	ans.Matched = st.name(record)

	text, err := s.generate(ctx, genai.Request{
		Messages:    st.messages(record, q.Question),
		Temperature: st.temperature,
		MaxTokens:   s.maxTokens,
	})
	if err != nil {
		ans.Outcome = OutcomeGenerationFailed
		ans.Reply = s.prompts.Busy()
		s.logger.WithError(err).WithField("provider", s.generator.Provider()).
			ErrorContext(ctx, "Generation failed")
		return ans, domerrors.Wrap(
			fmt.Errorf("%w: %w", domerrors.ErrGeneration, err),
			"assistant", "generate", s.prompts.Busy(),
		)
	}

	ans.Outcome = OutcomeAnswered
	if stringutil.IsBlank(text) {
		ans.Outcome = OutcomeEmptyGeneration
	}
	ans.Reply = st.shape(s.prompts.Finalize(text), record)
	return ans, nil
}

func (s *Service) generate(ctx context.Context, req genai.Request) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return s.generator.Generate(ctx, req)
}

func sourceName[T any](src Source[T]) string {
	if src == nil {
		return ""
	}
	return src.Name()
}
