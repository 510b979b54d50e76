package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"quizgen-service/internal/domain"
)

type countingStore struct {
	*Store
	calls int32
}

func (c *countingStore) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	atomic.AddInt32(&c.calls, 1)
	time.Sleep(5 * time.Millisecond)
	return c.Store.GetQuiz(ctx, quizID)
}

func TestQuizCacheSingleflight(t *testing.T) {
	backing := &countingStore{Store: NewStore()}
	seedQuiz(t, backing.Store, "abcde")
	cache := NewQuizCache(backing, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.GetQuiz(context.Background(), "abcde"); err != nil {
				t.Errorf("get: %v", err)
			}
		}()
	}
	wg.Wait()

	if calls := atomic.LoadInt32(&backing.calls); calls != 1 {
		t.Fatalf("expected single load, got %d", calls)
	}
}

func TestQuizCacheExpiresAndInvalidates(t *testing.T) {
	backing := &countingStore{Store: NewStore()}
	seedQuiz(t, backing.Store, "abcde")
	cache := NewQuizCache(backing, time.Minute)
	now := time.Now()
	cache.clock = func() time.Time { return now }
	ctx := context.Background()

	_, _ = cache.GetQuiz(ctx, "abcde")
	_, _ = cache.GetQuiz(ctx, "abcde")
	if calls := atomic.LoadInt32(&backing.calls); calls != 1 {
		t.Fatalf("expected cached read, got %d loads", calls)
	}

	now = now.Add(2 * time.Minute)
	_, _ = cache.GetQuiz(ctx, "abcde")
	if calls := atomic.LoadInt32(&backing.calls); calls != 2 {
		t.Fatalf("expected reload after expiry, got %d loads", calls)
	}

	finished := true
	if _, err := cache.UpdateQuiz(ctx, "abcde", domain.QuizPatch{IsFinished: &finished}); err != nil {
		t.Fatalf("update: %v", err)
	}
	quiz, _ := cache.GetQuiz(ctx, "abcde")
	if !quiz.IsFinished {
		t.Fatalf("expected cache to reflect update")
	}
}

func TestQuizCacheDoesNotCacheMisses(t *testing.T) {
	backing := &countingStore{Store: NewStore()}
	cache := NewQuizCache(backing, time.Minute)
	ctx := context.Background()

	if _, err := cache.GetQuiz(ctx, "abcde"); err != domain.ErrQuizNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	seedQuiz(t, backing.Store, "abcde")
	if _, err := cache.GetQuiz(ctx, "abcde"); err != nil {
		t.Fatalf("expected quiz after creation, got %v", err)
	}
}
