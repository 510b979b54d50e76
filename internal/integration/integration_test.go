package integration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"quizgen-service/internal/app"
	"quizgen-service/internal/domain"
	pgstore "quizgen-service/internal/infra/postgres"
	pgmigrations "quizgen-service/internal/infra/postgres/migrations"
	infraredis "quizgen-service/internal/infra/redis"
	"quizgen-service/internal/llm"
	"quizgen-service/internal/quizgen"
)

func TestQuizLifecycleEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	migrateSchema(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	quizzes := infraredis.NewQuizCache(redisClient, pgstore.NewStore(pool), 5*time.Minute)
	sessions := infraredis.NewSessionStore(redisClient, "it-node", 5*time.Minute)

	mock := llm.NewMockProvider()
	mock.Fallback = llm.DemoQuizText
	service := app.NewQuizService(app.Deps{
		Quizzes:   quizzes,
		Sessions:  sessions,
		Generator: quizgen.NewGenerator(mock, quizgen.Config{}, zerolog.Nop()),
		Logger:    zerolog.Nop(),
	})

	quiz, err := service.CreateFromPrompt(ctx, app.CreateFromPromptRequest{
		QuizSettings: app.QuizSettings{
			CreatorName:     "Carol",
			CreatorWallet:   "0xcreator",
			NumParticipants: 2,
			QuestionCount:   3,
			RewardPerScore:  1,
			IsPublic:        true,
		},
		Prompt: "general knowledge",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(quiz.Questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(quiz.Questions))
	}

	for _, join := range []app.JoinRequest{
		{WalletAddress: "0xa", ParticipantName: "Alice"},
		{WalletAddress: "0xb", ParticipantName: "Bob"},
	} {
		if _, err := service.Join(ctx, quiz.ID, join); err != nil {
			t.Fatalf("join: %v", err)
		}
	}
	if _, err := service.Join(ctx, quiz.ID, app.JoinRequest{WalletAddress: "0xc", ParticipantName: "Cy"}); !errors.Is(err, domain.ErrQuizFull) {
		t.Fatalf("expected ErrQuizFull, got %v", err)
	}

	answers := map[string]app.AnswerChoice{}
	for _, q := range quiz.Questions {
		answers[q.ID] = app.AnswerChoice(q.AnswerIndex())
	}
	result, err := service.Submit(ctx, app.SubmitRequest{QuizID: quiz.ID, WalletAddress: "0xb", Answers: answers})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Score != 3 || result.Total != 3 {
		t.Fatalf("expected full score, got %+v", result)
	}

	finished := true
	if _, err := service.Update(ctx, quiz.ID, domain.QuizPatch{IsFinished: &finished}); err != nil {
		t.Fatalf("update: %v", err)
	}

	lb, err := service.Leaderboard(ctx, quiz.ID)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if !lb.IsFinished || len(lb.Entries) != 2 || lb.Entries[0].WalletAddress != "0xb" {
		t.Fatalf("expected bob leading a finished quiz, got %+v", lb)
	}
	if lb.Entries[1].Score != nil {
		t.Fatalf("expected alice unscored, got %v", *lb.Entries[1].Score)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func migrateSchema(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
