package llm

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var (
	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "quizgen",
		Subsystem: "llm",
		Name:      "request_duration_seconds",
		Help:      "Duration of text generation requests",
		Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
	}, []string{"model"})

	requestFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quizgen",
		Subsystem: "llm",
		Name:      "request_failures_total",
		Help:      "Number of failed text generation requests",
	}, []string{"model"})
)

// LoggingProvider logs and measures every request to the inner provider.
type LoggingProvider struct {
	inner  Provider
	logger zerolog.Logger
}

// WithLogging wraps a Provider with request logging and metrics.
func WithLogging(p Provider, logger zerolog.Logger) Provider {
	return &LoggingProvider{
		inner:  p,
		logger: logger.With().Str("component", "llm").Str("model", p.ModelID()).Logger(),
	}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)
	elapsed := time.Since(start)

	model := l.inner.ModelID()
	requestDuration.WithLabelValues(model).Observe(elapsed.Seconds())
	if err != nil {
		requestFailures.WithLabelValues(model).Inc()
		l.logger.Warn().Err(err).Dur("latency", elapsed).Int("prompt_chars", len(req.Prompt)).Msg("generation failed")
		return nil, err
	}

	l.logger.Debug().
		Dur("latency", elapsed).
		Int("input_tokens", resp.Usage.InputTokens).
		Int("output_tokens", resp.Usage.OutputTokens).
		Str("stop_reason", resp.StopReason).
		Msg("generation complete")
	return resp, nil
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}
