package app

import (
	"testing"
	"time"

	"quizgen-service/internal/domain"
)

func intPtr(v int) *int { return &v }

func TestBuildLeaderboardOrdering(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	at := func(sec int) *time.Time {
		ts := base.Add(time.Duration(sec) * time.Second)
		return &ts
	}

	participants := []domain.Participant{
		{WalletAddress: "0x1", Name: "Unscored", JoinedAt: base},
		{WalletAddress: "0x2", Name: "Late", Score: intPtr(2), SubmittedAt: at(30)},
		{WalletAddress: "0x3", Name: "Early", Score: intPtr(2), SubmittedAt: at(10)},
		{WalletAddress: "0x4", Name: "Low", Score: intPtr(0), SubmittedAt: at(1)},
		{WalletAddress: "0x5", Name: "Best", Score: intPtr(3), SubmittedAt: at(50)},
		{WalletAddress: "0x6", Name: "Anna", Score: intPtr(2), SubmittedAt: at(10)},
	}
	quiz := domain.Quiz{ID: "abcde", CreatorName: "Carol", IsFinished: true, Questions: make([]domain.Question, 3)}

	lb := buildLeaderboard(quiz, participants, base)

	want := []string{"Best", "Anna", "Early", "Late", "Low", "Unscored"}
	if len(lb.Entries) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(lb.Entries))
	}
	for i, name := range want {
		if lb.Entries[i].Name != name {
			t.Fatalf("position %d: expected %s, got %s", i, name, lb.Entries[i].Name)
		}
	}
	if lb.QuestionCount != 3 || !lb.IsFinished || lb.CreatorName != "Carol" {
		t.Fatalf("unexpected summary %+v", lb)
	}
	if participants[0].Name != "Unscored" {
		t.Fatalf("input slice must not be reordered")
	}
}

func TestScoreAnswers(t *testing.T) {
	quiz := domain.Quiz{Questions: []domain.Question{
		{ID: "q1", CorrectAnswer: "A"},
		{ID: "q2", CorrectAnswer: "D"},
		{ID: "q3", CorrectAnswer: "B"},
	}}
	answers := map[string]AnswerChoice{"q1": 0, "q2": NoAnswer, "q3": 1, "unknown": 2}
	if got := scoreAnswers(quiz, answers); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
	if got := scoreAnswers(quiz, nil); got != 0 {
		t.Fatalf("expected 0 for no answers, got %d", got)
	}
}

func TestSessionDropsStaleSnapshots(t *testing.T) {
	s := NewSession("abcde")
	now := time.Now()
	ch, cancel := s.subscribe(domain.Leaderboard{QuizID: "abcde", UpdatedAt: now})
	defer cancel()
	<-ch

	for i := 1; i <= 20; i++ {
		s.publish(domain.Leaderboard{QuizID: "abcde", UpdatedAt: now.Add(time.Duration(i) * time.Second)})
	}
	s.publish(domain.Leaderboard{QuizID: "abcde", UpdatedAt: now})

	var last domain.Leaderboard
	for len(ch) > 0 {
		last = <-ch
	}
	if !last.UpdatedAt.Equal(now.Add(20 * time.Second)) {
		t.Fatalf("expected newest snapshot last, got %v", last.UpdatedAt)
	}
	if s.Subscribers() != 1 {
		t.Fatalf("expected one subscriber")
	}
}
