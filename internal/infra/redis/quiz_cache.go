package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quizgen-service/internal/app"
	"quizgen-service/internal/domain"
)

// QuizCache wraps a QuizStore and caches quiz documents in Redis so every
// instance shares one copy. Stored as: SET quizgen:quiz:{quizID} <json> EX ttl
type QuizCache struct {
	app.QuizStore

	client *redis.Client
	ttl    time.Duration
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewQuizCache(client *redis.Client, next app.QuizStore, ttl time.Duration) *QuizCache {
	return &QuizCache{
		QuizStore: next,
		client:    client,
		ttl:       ttl,
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuizCache) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	if quiz, ok := c.lookup(ctx, quizID); ok {
		return quiz, nil
	}

	result, err, _ := c.sf.Do(quizID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if quiz, ok := c.lookup(ctx, quizID); ok {
			return quiz, nil
		}

		quiz, err := c.QuizStore.GetQuiz(ctx, quizID)
		if err != nil {
			return domain.Quiz{}, err
		}
		c.store(ctx, quiz)
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

func (c *QuizCache) UpdateQuiz(ctx context.Context, quizID string, patch domain.QuizPatch) (domain.Quiz, error) {
	if err := c.Invalidate(ctx, quizID); err != nil {
		return domain.Quiz{}, err
	}
	quiz, err := c.QuizStore.UpdateQuiz(ctx, quizID, patch)
	if err != nil {
		return domain.Quiz{}, err
	}
	c.store(ctx, quiz)
	return quiz, nil
}

// Invalidate removes the cached document. A failure here is returned so an
// update never leaves a stale copy behind.
func (c *QuizCache) Invalidate(ctx context.Context, quizID string) error {
	return c.client.Del(ctx, quizKey(quizID)).Err()
}

func (c *QuizCache) lookup(ctx context.Context, quizID string) (domain.Quiz, bool) {
	raw, err := c.client.Get(ctx, quizKey(quizID)).Bytes()
	if err != nil {
		// redis.Nil on a miss; any other error falls back to the store
		return domain.Quiz{}, false
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(raw, &quiz); err != nil {
		return domain.Quiz{}, false
	}
	return quiz, true
}

// store is best effort: the backing store stays the source of truth.
func (c *QuizCache) store(ctx context.Context, quiz domain.Quiz) {
	raw, err := json.Marshal(quiz)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, quizKey(quiz.ID), raw, c.ttlWithJitter()).Err()
}

func quizKey(quizID string) string {
	return "quizgen:quiz:" + quizID
}

func (c *QuizCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
