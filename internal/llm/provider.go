// Package llm wraps the text-generation services quizzes are built from.
package llm

import "context"

// Provider produces free-form text for a prompt.
type Provider interface {
	// Generate sends the request and returns the model's text output.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the model.
type Request struct {
	// System sets the model's role. Optional.
	System string

	// Prompt is the single user turn.
	Prompt string

	// MaxTokens bounds the response length.
	MaxTokens int

	// Temperature controls randomness; zero leaves the provider default.
	Temperature float64
}

// Response holds the model's output.
type Response struct {
	Text       string
	Usage      Usage
	Model      string
	StopReason string // "end" or "max_tokens"
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// resolveModel maps a friendly model name to a provider model ID.
func resolveModel(name string, models map[string]string) string {
	if id, ok := models[name]; ok {
		return id
	}
	return name
}
