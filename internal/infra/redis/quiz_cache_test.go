package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"quizgen-service/internal/domain"
	"quizgen-service/internal/infra/memory"
)

func TestQuizCacheCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	backing := &countingStore{Store: memory.NewStore()}
	if err := backing.CreateQuiz(context.Background(), sampleQuiz()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	cache := NewQuizCache(newClient(mr), backing, time.Minute)

	quiz, err := cache.GetQuiz(context.Background(), "quiz1")
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if backing.calls != 1 {
		t.Fatalf("expected store called once, got %d", backing.calls)
	}
	if !mr.Exists("quizgen:quiz:quiz1") {
		t.Fatalf("expected quiz document in redis")
	}

	// Second call should hit cache, store not incremented.
	cached, _ := cache.GetQuiz(context.Background(), "quiz1")
	if backing.calls != 1 {
		t.Fatalf("expected cache hit, store calls=%d", backing.calls)
	}
	if cached.Questions[0].CorrectAnswer != quiz.Questions[0].CorrectAnswer || len(cached.Questions[0].Options) != 4 {
		t.Fatalf("cached quiz lost data: %+v", cached)
	}
}

func TestQuizCacheUpdateRefreshesDocument(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	backing := &countingStore{Store: memory.NewStore()}
	_ = backing.CreateQuiz(context.Background(), sampleQuiz())
	cache := NewQuizCache(newClient(mr), backing, time.Minute)
	ctx := context.Background()

	_, _ = cache.GetQuiz(ctx, "quiz1")
	public := true
	if _, err := cache.UpdateQuiz(ctx, "quiz1", domain.QuizPatch{IsPublic: &public}); err != nil {
		t.Fatalf("update: %v", err)
	}
	quiz, _ := cache.GetQuiz(ctx, "quiz1")
	if !quiz.IsPublic {
		t.Fatalf("expected cached quiz to be public after update")
	}
	if backing.calls != 1 {
		t.Fatalf("expected update to refresh the cache, store calls=%d", backing.calls)
	}
}

func TestQuizCacheFallsBackWhenRedisDown(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	client := newClient(mr)
	mr.Close()

	backing := &countingStore{Store: memory.NewStore()}
	_ = backing.CreateQuiz(context.Background(), sampleQuiz())
	cache := NewQuizCache(client, backing, time.Minute)

	if _, err := cache.GetQuiz(context.Background(), "quiz1"); err != nil {
		t.Fatalf("expected store fallback, got %v", err)
	}
	if _, err := cache.GetQuiz(context.Background(), "nope0"); err != domain.ErrQuizNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

type countingStore struct {
	*memory.Store
	calls int
}

func (s *countingStore) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	s.calls++
	return s.Store.GetQuiz(ctx, quizID)
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID:              "quiz1",
		NumParticipants: 3,
		Questions: []domain.Question{
			{
				ID:            "q1",
				Text:          "What is 2 + 2?",
				Options:       []string{"A) 3", "B) 4", "C) 5", "D) 6"},
				CorrectAnswer: "B",
			},
		},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        mr.Addr(),
		MaxRetries:  -1,
		DialTimeout: 200 * time.Millisecond,
	})
}
