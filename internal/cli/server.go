package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"quizgen-service/internal/app"
	"quizgen-service/internal/config"
	"quizgen-service/internal/infra/memory"
	"quizgen-service/internal/infra/postgres"
	redisinfra "quizgen-service/internal/infra/redis"
	"quizgen-service/internal/llm"
	"quizgen-service/internal/quizgen"
	"quizgen-service/internal/source"
	"quizgen-service/internal/telemetry"
	transport "quizgen-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
		SampleRate:  cfg.Tracing.SampleRate,
		ServiceName: "quizgen-service",
	})
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn().Err(err).Msg("flush traces")
		}
	}()
	if cfg.Tracing.Endpoint != "" {
		logger.Info().Str("endpoint", cfg.Tracing.Endpoint).Msg("exporting traces")
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrations(ctx, cfg, logger); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var store app.QuizStore
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		store = postgres.NewStore(pool)
		logger.Info().Msg("using postgres quiz store")
	} else {
		store = memory.NewStore()
		logger.Warn().Msg("postgres url not configured, quizzes are kept in memory")
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var sessions app.SessionRepository
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		instance := cfg.Server.Instance
		if instance == "" {
			instance = uuid.NewString()
		}
		store = redisinfra.NewQuizCache(redisClient, store, quizTTL)
		sessions = redisinfra.NewSessionStore(redisClient, instance, config.TTLDuration(cfg.Redis.TTL, 10*time.Minute))
	} else {
		store = memory.NewQuizCache(store, quizTTL)
		sessions = memory.NewSessionStore()
	}

	provider, err := llm.NewProvider(ctx, cfg.LLMConfig(), logger)
	if err != nil {
		return err
	}
	logger.Info().Str("model", provider.ModelID()).Msg("llm provider ready")

	generator := quizgen.NewGenerator(provider, quizgen.Config{
		MaxTokens:      cfg.Quiz.MaxTokens,
		Temperature:    cfg.Quiz.Temperature,
		MaxSourceChars: cfg.Quiz.MaxSourceChars,
		Timeout:        config.TTLDuration(cfg.Quiz.GenerateTimeout, 0),
	}, logger)
	fetcher := source.NewFetcher(
		config.TTLDuration(cfg.Source.FetchTimeout, 15*time.Second),
		cfg.Source.MaxPageBytes,
		logger,
	)

	service := app.NewQuizService(app.Deps{
		Quizzes:     store,
		Sessions:    sessions,
		Generator:   generator,
		Fetcher:     fetcher,
		Validate:    validator.New(validator.WithRequiredStructEnabled()),
		Logger:      logger,
		MaxPDFBytes: cfg.Source.MaxPDFBytes,
	})

	router := transport.NewRouter(
		transport.NewQuizHandler(service, cfg.Source.MaxPDFBytes, logger),
		transport.NewWSHandler(service, logger),
		logger,
	)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  config.TTLDuration(cfg.Server.ReadTimeout, 15*time.Second),
		WriteTimeout: config.TTLDuration(cfg.Server.WriteTimeout, 90*time.Second),
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("starting quiz service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("server stopped")
		}
	}()

	return waitForShutdown(ctx, server, logger)
}

func waitForShutdown(ctx context.Context, server *http.Server, logger zerolog.Logger) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case <-stop:
		logger.Info().Msg("shutting down server")
	case <-ctx.Done():
		logger.Info().Msg("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
