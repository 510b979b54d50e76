package extract

import (
	"strings"

	"quizgen-service/internal/domain"
)

// buildQuestion validates a raw match and turns it into a Question.
// Invalid matches report false and are never partially built.
func buildQuestion(m rawMatch) (domain.Question, bool) {
	stem := strings.TrimSpace(m.stem)
	if stem == "" || m.captured < len(domain.AnswerLetters) {
		return domain.Question{}, false
	}

	answer := strings.ToUpper(strings.TrimSpace(m.answer))
	if domain.LetterIndex(answer) < 0 {
		return domain.Question{}, false
	}

	options := make([]string, len(domain.AnswerLetters))
	for i, letter := range domain.AnswerLetters {
		options[i] = letter + ") " + strings.TrimSpace(m.options[i])
	}

	return domain.Question{
		Text:          stem,
		Options:       options,
		CorrectAnswer: answer,
	}, true
}
