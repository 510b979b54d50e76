package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"quizgen-service/internal/app"
)

const opTimeout = 2 * time.Second

// SessionStore keeps leaderboard sessions in process and advertises them in
// Redis: each quiz with live viewers maps to the set of instances serving
// them (SADD quizgen:session:{quizID} {instance}). Other instances can use
// that to route updates.
type SessionStore struct {
	client   *redis.Client
	instance string
	ttl      time.Duration

	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore(client *redis.Client, instance string, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		instance: instance,
		ttl:      ttl,
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) GetOrCreate(quizID string) *app.Session {
	s.mu.Lock()
	session, ok := s.sessions[quizID]
	if !ok {
		session = app.NewSession(quizID)
		s.sessions[quizID] = session
	}
	s.mu.Unlock()

	s.advertise(quizID)
	return session
}

func (s *SessionStore) Get(quizID string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[quizID]
	return session, ok
}

func (s *SessionStore) DeleteIfEmpty(quizID string) {
	s.mu.Lock()
	session, ok := s.sessions[quizID]
	if !ok || !session.IsEmpty() {
		s.mu.Unlock()
		return
	}
	delete(s.sessions, quizID)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	_ = s.client.SRem(ctx, sessionKey(quizID), s.instance).Err()
}

// Instances lists the instances currently serving live viewers of a quiz.
func (s *SessionStore) Instances(ctx context.Context, quizID string) ([]string, error) {
	return s.client.SMembers(ctx, sessionKey(quizID)).Result()
}

// advertise is best effort; the key expires if this instance dies.
func (s *SessionStore) advertise(quizID string) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	pipe := s.client.TxPipeline()
	pipe.SAdd(ctx, sessionKey(quizID), s.instance)
	if s.ttl > 0 {
		pipe.Expire(ctx, sessionKey(quizID), s.ttl)
	}
	_, _ = pipe.Exec(ctx)
}

func sessionKey(quizID string) string {
	return "quizgen:session:" + quizID
}
