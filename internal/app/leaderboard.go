package app

import (
	"sort"
	"time"

	"quizgen-service/internal/domain"
)

// buildLeaderboard orders participants by score (unscored last), then by who
// submitted first, then by name.
func buildLeaderboard(quiz domain.Quiz, participants []domain.Participant, now time.Time) domain.Leaderboard {
	ordered := make([]domain.Participant, len(participants))
	copy(ordered, participants)

	sort.SliceStable(ordered, func(i, j int) bool {
		pi, pj := ordered[i], ordered[j]
		if (pi.Score == nil) != (pj.Score == nil) {
			return pi.Score != nil
		}
		if pi.Score != nil && *pi.Score != *pj.Score {
			return *pi.Score > *pj.Score
		}
		if ti, tj := submittedAt(pi), submittedAt(pj); !ti.Equal(tj) {
			return ti.Before(tj)
		}
		if pi.Name != pj.Name {
			return pi.Name < pj.Name
		}
		return pi.WalletAddress < pj.WalletAddress
	})

	entries := make([]domain.LeaderboardEntry, 0, len(ordered))
	for _, p := range ordered {
		entries = append(entries, domain.LeaderboardEntry{
			WalletAddress: p.WalletAddress,
			Name:          p.Name,
			Score:         p.Score,
		})
	}

	return domain.Leaderboard{
		QuizID:        quiz.ID,
		CreatorName:   quiz.CreatorName,
		QuestionCount: len(quiz.Questions),
		IsFinished:    quiz.IsFinished,
		Entries:       entries,
		UpdatedAt:     now,
	}
}

func submittedAt(p domain.Participant) time.Time {
	if p.SubmittedAt == nil {
		return p.JoinedAt
	}
	return *p.SubmittedAt
}

// scoreAnswers counts answers that match the answer key. Questions missing
// from answers count as skipped.
func scoreAnswers(quiz domain.Quiz, answers map[string]AnswerChoice) int {
	score := 0
	for _, q := range quiz.Questions {
		choice, ok := answers[q.ID]
		if !ok || choice == NoAnswer {
			continue
		}
		if choice.Letter() == q.CorrectAnswer {
			score++
		}
	}
	return score
}
