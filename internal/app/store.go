package app

import (
	"context"
	"time"

	"quizgen-service/internal/domain"
)

// QuizStore persists quizzes and their participants.
type QuizStore interface {
	// CreateQuiz fails with domain.ErrQuizExists when the id is taken.
	CreateQuiz(ctx context.Context, quiz domain.Quiz) error
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	UpdateQuiz(ctx context.Context, quizID string, patch domain.QuizPatch) (domain.Quiz, error)

	// AddParticipant inserts p unless the wallet already joined
	// (domain.ErrAlreadyParticipated) or limit participants exist
	// (domain.ErrQuizFull). Both checks and the insert are atomic.
	AddParticipant(ctx context.Context, p domain.Participant, limit int) error
	GetParticipant(ctx context.Context, quizID, wallet string) (domain.Participant, error)
	CountParticipants(ctx context.Context, quizID string) (int, error)
	ListParticipants(ctx context.Context, quizID string) ([]domain.Participant, error)
	SetScore(ctx context.Context, quizID, wallet string, score int, at time.Time) (domain.Participant, error)
}

// SessionRepository tracks live leaderboard sessions (in-memory, Redis, etc).
type SessionRepository interface {
	GetOrCreate(quizID string) *Session
	Get(quizID string) (*Session, bool)
	DeleteIfEmpty(quizID string)
}
