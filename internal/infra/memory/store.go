package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"quizgen-service/internal/domain"
)

// Store is an in-memory implementation of app.QuizStore.
type Store struct {
	mu           sync.RWMutex
	quizzes      map[string]domain.Quiz
	participants map[string]map[string]domain.Participant
}

func NewStore() *Store {
	return &Store{
		quizzes:      make(map[string]domain.Quiz),
		participants: make(map[string]map[string]domain.Participant),
	}
}

func (s *Store) CreateQuiz(_ context.Context, quiz domain.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[quiz.ID]; ok {
		return domain.ErrQuizExists
	}
	s.quizzes[quiz.ID] = cloneQuiz(quiz)
	return nil
}

func (s *Store) GetQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quiz, ok := s.quizzes[quizID]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return cloneQuiz(quiz), nil
}

func (s *Store) UpdateQuiz(_ context.Context, quizID string, patch domain.QuizPatch) (domain.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz, ok := s.quizzes[quizID]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	patch.Apply(&quiz)
	s.quizzes[quizID] = quiz
	return cloneQuiz(quiz), nil
}

func (s *Store) AddParticipant(_ context.Context, p domain.Participant, limit int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[p.QuizID]; !ok {
		return domain.ErrQuizNotFound
	}
	byWallet := s.participants[p.QuizID]
	if byWallet == nil {
		byWallet = make(map[string]domain.Participant)
		s.participants[p.QuizID] = byWallet
	}
	if _, ok := byWallet[p.WalletAddress]; ok {
		return domain.ErrAlreadyParticipated
	}
	if len(byWallet) >= limit {
		return domain.ErrQuizFull
	}
	byWallet[p.WalletAddress] = p
	return nil
}

func (s *Store) GetParticipant(_ context.Context, quizID, wallet string) (domain.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.participants[quizID][wallet]
	if !ok {
		return domain.Participant{}, domain.ErrParticipantNotFound
	}
	return p, nil
}

func (s *Store) CountParticipants(_ context.Context, quizID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.participants[quizID]), nil
}

// ListParticipants returns participants in join order.
func (s *Store) ListParticipants(_ context.Context, quizID string) ([]domain.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Participant, 0, len(s.participants[quizID]))
	for _, p := range s.participants[quizID] {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].JoinedAt.Equal(out[j].JoinedAt) {
			return out[i].JoinedAt.Before(out[j].JoinedAt)
		}
		return out[i].WalletAddress < out[j].WalletAddress
	})
	return out, nil
}

func (s *Store) SetScore(_ context.Context, quizID, wallet string, score int, at time.Time) (domain.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.participants[quizID][wallet]
	if !ok {
		return domain.Participant{}, domain.ErrParticipantNotFound
	}
	p.Score = &score
	p.SubmittedAt = &at
	s.participants[quizID][wallet] = p
	return p, nil
}

func cloneQuiz(quiz domain.Quiz) domain.Quiz {
	questions := make([]domain.Question, len(quiz.Questions))
	for i, q := range quiz.Questions {
		q.Options = append([]string(nil), q.Options...)
		questions[i] = q
	}
	quiz.Questions = questions
	return quiz
}
