package cli

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"quizgen-service/internal/config"
)

// newLogger builds the root logger from the log section of cfg.
func newLogger(cfg config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil || cfg.Log.Level == "" {
		level = zerolog.InfoLevel
	}

	var out io.Writer = os.Stderr
	if cfg.Log.Pretty {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Str("service", "quizgen").Logger()
}
