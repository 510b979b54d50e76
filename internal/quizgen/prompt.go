package quizgen

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidInput is returned when an Input cannot be turned into a prompt.
var ErrInvalidInput = errors.New("invalid quiz input")

// SourceKind says where the quiz material comes from.
type SourceKind string

const (
	SourceTopic SourceKind = "prompt"
	SourcePDF   SourceKind = "pdf"
	SourceWeb   SourceKind = "url"
)

const formatInstructions = `IMPORTANT FORMATTING INSTRUCTIONS:
- Each question must have EXACTLY 4 options: A, B, C, and D
- Clearly mark the correct answer
- Follow this EXACT format:

Question 1: [Question Text]
A) [Option A]
B) [Option B]
C) [Option C]
D) [Option D]
Correct Answer: [A/B/C/D]

Question 2: [Next Question Text]
...and so on.`

// Input is what a quiz is generated from.
type Input struct {
	Kind          SourceKind
	Topic         string // SourceTopic
	Material      string // SourcePDF and SourceWeb: extracted document text
	Origin        string // SourceWeb: page URL, informational
	QuestionCount int
}

// BuildPrompt assembles the generation prompt for in.
func BuildPrompt(in Input) (string, error) {
	if in.QuestionCount <= 0 {
		return "", fmt.Errorf("%w: question count must be positive", ErrInvalidInput)
	}

	var b strings.Builder
	switch in.Kind {
	case SourceTopic:
		if strings.TrimSpace(in.Topic) == "" {
			return "", fmt.Errorf("%w: topic is required", ErrInvalidInput)
		}
		fmt.Fprintf(&b, "Generate a quiz with exactly %d multiple-choice questions about %q.\n\n", in.QuestionCount, strings.TrimSpace(in.Topic))
	case SourcePDF, SourceWeb:
		if strings.TrimSpace(in.Material) == "" {
			return "", fmt.Errorf("%w: source material is required", ErrInvalidInput)
		}
		label := "a PDF document"
		if in.Kind == SourceWeb {
			label = "a web page"
			if in.Origin != "" {
				label += " (" + in.Origin + ")"
			}
		}
		fmt.Fprintf(&b, "The following is the content of %s:\n\n%s\n\n", label, in.Material)
		fmt.Fprintf(&b, "Based on this content, generate a quiz with exactly %d multiple-choice questions.\n\n", in.QuestionCount)
	default:
		return "", fmt.Errorf("%w: unknown source kind %q", ErrInvalidInput, in.Kind)
	}
	b.WriteString(formatInstructions)
	return b.String(), nil
}
