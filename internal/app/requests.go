package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"quizgen-service/internal/domain"
)

// QuizSettings are the creator-supplied fields shared by every create flow.
type QuizSettings struct {
	CreatorName     string   `json:"creatorName" validate:"required,max=64"`
	CreatorWallet   string   `json:"creatorWallet" validate:"required,max=128"`
	NumParticipants int      `json:"numParticipants" validate:"required,gt=0"`
	QuestionCount   int      `json:"questionCount" validate:"required,min=1,max=50"`
	RewardPerScore  float64  `json:"rewardPerScore" validate:"gte=0"`
	TotalCost       *float64 `json:"totalCost" validate:"omitempty,gte=0"`
	IsPublic        bool     `json:"isPublic"`
}

// totalCost keeps a client-provided figure and otherwise applies the 10% fee.
func (s QuizSettings) totalCost() float64 {
	if s.TotalCost != nil {
		return *s.TotalCost
	}
	return s.RewardPerScore * float64(s.NumParticipants) * 1.1
}

// CreateFromPromptRequest generates a quiz about a free-text topic.
type CreateFromPromptRequest struct {
	QuizSettings
	Prompt string `json:"prompt" validate:"required,max=2000"`
}

// CreateFromPDFRequest generates a quiz from an uploaded PDF.
type CreateFromPDFRequest struct {
	QuizSettings
	Document []byte `json:"-" validate:"required"`
}

// CreateFromURLRequest generates a quiz from the text of a web page.
type CreateFromURLRequest struct {
	QuizSettings
	URL string `json:"url" validate:"required,url,max=2048"`
}

// VerifyRequest checks whether a wallet may take a quiz.
type VerifyRequest struct {
	WalletAddress string `json:"walletAddress" validate:"required,max=128"`
}

// JoinRequest registers a wallet as a participant.
type JoinRequest struct {
	WalletAddress   string `json:"walletAddress" validate:"required,max=128"`
	ParticipantName string `json:"participantName" validate:"required,max=64"`
}

// SubmitRequest carries a participant's answers keyed by question id.
type SubmitRequest struct {
	QuizID        string                  `json:"quizId" validate:"required"`
	WalletAddress string                  `json:"walletAddress" validate:"required,max=128"`
	Answers       map[string]AnswerChoice `json:"answers"`
}

// NoAnswer marks a skipped question.
const NoAnswer AnswerChoice = -1

// AnswerChoice is a chosen option index (0-3) or NoAnswer.
// On the wire it may be a number, a digit string, a letter A-D or "no_answer".
type AnswerChoice int

// Letter returns the option letter, or "" for NoAnswer.
func (a AnswerChoice) Letter() string {
	if a < 0 || int(a) >= len(domain.AnswerLetters) {
		return ""
	}
	return domain.AnswerLetters[a]
}

func (a *AnswerChoice) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = NoAnswer
		return nil
	}

	var raw string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrInvalidAnswer, err)
		}
	} else {
		raw = string(data)
	}

	choice, err := ParseAnswerChoice(raw)
	if err != nil {
		return err
	}
	*a = choice
	return nil
}

func (a AnswerChoice) MarshalJSON() ([]byte, error) {
	if a == NoAnswer {
		return []byte(`"no_answer"`), nil
	}
	return []byte(strconv.Itoa(int(a))), nil
}

// ParseAnswerChoice reads an index, a letter or "no_answer".
func ParseAnswerChoice(raw string) (AnswerChoice, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "no_answer") {
		return NoAnswer, nil
	}
	if idx := domain.LetterIndex(strings.ToUpper(raw)); idx >= 0 {
		return AnswerChoice(idx), nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 || n >= len(domain.AnswerLetters) {
		return NoAnswer, fmt.Errorf("%w: %q", domain.ErrInvalidAnswer, raw)
	}
	return AnswerChoice(n), nil
}
