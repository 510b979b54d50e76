// Package extract recovers multiple-choice questions from free-form
// generator output. Dialects are tried in priority order against the same
// input and the first one that yields a valid question wins outright.
package extract

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"quizgen-service/internal/domain"
)

// ErrInvalidInput is returned when there is no input to read at all.
var ErrInvalidInput = errors.New("extract: invalid input")

var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// Extractor runs a fixed dialect bank over generator output.
// It holds no mutable state and is safe for concurrent use.
type Extractor struct {
	bank []Dialect
}

// New returns an Extractor over bank, or over DefaultBank when bank is empty.
func New(bank ...Dialect) *Extractor {
	if len(bank) == 0 {
		return &Extractor{bank: DefaultBank()}
	}
	owned := make([]Dialect, len(bank))
	copy(owned, bank)
	return &Extractor{bank: owned}
}

// Extract returns the questions found in text in order of appearance.
// The result is empty, never nil, when no dialect matches.
func (e *Extractor) Extract(text string) []domain.Question {
	questions, _ := e.ExtractWithDialect(text)
	return questions
}

// ExtractWithDialect is Extract that also reports the name of the winning
// dialect, or "" when none produced a question.
func (e *Extractor) ExtractWithDialect(text string) ([]domain.Question, string) {
	text = lineEndings.Replace(text)
	for _, d := range e.bank {
		questions := validated(scan(d, text))
		if len(questions) > 0 {
			return questions, d.name
		}
	}
	return []domain.Question{}, ""
}

// ExtractReader reads r to the end and extracts from its contents.
// A nil reader fails with ErrInvalidInput.
func (e *Extractor) ExtractReader(r io.Reader) ([]domain.Question, error) {
	if r == nil {
		return nil, ErrInvalidInput
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read generator output: %w", err)
	}
	return e.Extract(string(data)), nil
}

func validated(matches []rawMatch) []domain.Question {
	var questions []domain.Question
	for _, m := range matches {
		if q, ok := buildQuestion(m); ok {
			questions = append(questions, q)
		}
	}
	return questions
}

var std = New()

// Extract runs the default dialect bank over text.
func Extract(text string) []domain.Question {
	return std.Extract(text)
}

// ExtractReader runs the default dialect bank over the contents of r.
func ExtractReader(r io.Reader) ([]domain.Question, error) {
	return std.ExtractReader(r)
}
