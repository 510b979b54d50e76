// Package quizgen generates quiz questions with a language model and
// recovers them from its free-form answer.
package quizgen

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"quizgen-service/internal/domain"
	"quizgen-service/internal/extract"
	"quizgen-service/internal/llm"
	"quizgen-service/internal/source"
)

var (
	extractions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quizgen",
		Subsystem: "extract",
		Name:      "results_total",
		Help:      "Extraction outcomes by winning dialect (\"none\" when nothing matched)",
	}, []string{"dialect"})

	shortfalls = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "quizgen",
		Subsystem: "extract",
		Name:      "shortfall_total",
		Help:      "Generations that recovered fewer questions than requested",
	})
)

// Config tunes the generation request.
type Config struct {
	MaxTokens      int
	Temperature    float64
	MaxSourceChars int
	Timeout        time.Duration
}

// Generator turns an Input into validated questions.
type Generator struct {
	provider  llm.Provider
	extractor *extract.Extractor
	cfg       Config
	logger    zerolog.Logger
	tracer    trace.Tracer
	newID     func() string
}

// NewGenerator wires a provider to the default extractor.
func NewGenerator(provider llm.Provider, cfg Config, logger zerolog.Logger) *Generator {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2000
	}
	return &Generator{
		provider:  provider,
		extractor: extract.New(),
		cfg:       cfg,
		logger:    logger.With().Str("component", "quizgen").Logger(),
		tracer:    otel.Tracer("quizgen-service/internal/quizgen"),
		newID:     uuid.NewString,
	}
}

// Generate asks the model for in.QuestionCount questions and returns those
// that could be recovered. It fails with domain.ErrNoQuestions when none were.
func (g *Generator) Generate(parent context.Context, in Input) ([]domain.Question, error) {
	ctx, span := g.tracer.Start(parent, "quizgen.generate", trace.WithAttributes(
		attribute.String("source", string(in.Kind)),
		attribute.Int("questions.requested", in.QuestionCount),
		attribute.String("model", g.provider.ModelID()),
	))
	defer span.End()

	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	in.Material = source.Truncate(in.Material, g.cfg.MaxSourceChars)
	prompt, err := BuildPrompt(in)
	if err != nil {
		return nil, g.fail(span, err)
	}

	text, err := g.complete(ctx, prompt)
	if err != nil {
		return nil, g.fail(span, fmt.Errorf("generate quiz: %w", err))
	}

	questions, dialect := g.extractor.ExtractWithDialect(text)
	if dialect == "" {
		extractions.WithLabelValues("none").Inc()
		g.logger.Warn().Str("source", string(in.Kind)).Int("response_chars", len(text)).Msg("no questions recovered from generator output")
		return nil, g.fail(span, domain.ErrNoQuestions)
	}
	extractions.WithLabelValues(dialect).Inc()

	for i := range questions {
		questions[i].ID = g.newID()
	}

	span.SetAttributes(attribute.String("dialect", dialect), attribute.Int("questions.recovered", len(questions)))
	event := g.logger.Info()
	if len(questions) < in.QuestionCount {
		shortfalls.Inc()
		event = g.logger.Warn()
	}
	event.Str("dialect", dialect).
		Int("requested", in.QuestionCount).
		Int("recovered", len(questions)).
		Msg("quiz generated")
	return questions, nil
}

// complete calls the provider, accepting a truncated answer since the
// questions before the cut are usually intact.
func (g *Generator) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := g.provider.Generate(ctx, llm.Request{
		Prompt:      prompt,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
	})
	if err != nil {
		var truncated *llm.ErrMaxTokensExceeded
		if errors.As(err, &truncated) && truncated.Text != "" {
			return truncated.Text, nil
		}
		return "", err
	}
	if resp.StopReason == "max_tokens" {
		g.logger.Warn().Msg("generator output hit max tokens")
	}
	return resp.Text, nil
}

func (g *Generator) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
