package quizgen

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"quizgen-service/internal/domain"
	"quizgen-service/internal/llm"
)

func newTestGenerator(provider llm.Provider, cfg Config) *Generator {
	g := NewGenerator(provider, cfg, zerolog.Nop())
	n := 0
	g.newID = func() string {
		n++
		return "q" + strconv.Itoa(n)
	}
	return g
}

func TestGenerateAssignsIDsInOrder(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: llm.DemoQuizText})
	g := newTestGenerator(mock, Config{})

	questions, err := g.Generate(context.Background(), Input{Kind: SourceTopic, Topic: "science", QuestionCount: 3})
	require.NoError(t, err)
	require.Len(t, questions, 3)
	assert.Equal(t, "q1", questions[0].ID)
	assert.Equal(t, "q3", questions[2].ID)
	assert.Equal(t, "B", questions[0].CorrectAnswer)

	require.Equal(t, 1, mock.CallCount())
	assert.Contains(t, mock.Calls[0].Prompt, `exactly 3 multiple-choice questions about "science"`)
	assert.Equal(t, 2000, mock.Calls[0].MaxTokens)
}

func TestGenerateAcceptsShortfall(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: llm.DemoQuizText})
	g := newTestGenerator(mock, Config{})

	questions, err := g.Generate(context.Background(), Input{Kind: SourceTopic, Topic: "science", QuestionCount: 10})
	require.NoError(t, err)
	assert.Len(t, questions, 3)
}

func TestGenerateNoQuestions(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: "Sorry, I can't help with that."})
	g := newTestGenerator(mock, Config{})

	_, err := g.Generate(context.Background(), Input{Kind: SourceTopic, Topic: "x", QuestionCount: 2})
	assert.ErrorIs(t, err, domain.ErrNoQuestions)
}

func TestGenerateProviderFailure(t *testing.T) {
	boom := &llm.ErrProviderUnavailable{Err: errors.New("down")}
	g := newTestGenerator(llm.NewMockProvider(llm.MockResponse{Err: boom}), Config{})

	_, err := g.Generate(context.Background(), Input{Kind: SourceTopic, Topic: "x", QuestionCount: 2})
	var unavail *llm.ErrProviderUnavailable
	assert.ErrorAs(t, err, &unavail)
}

func TestGenerateRejectsBlankInputBeforeCallingProvider(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: llm.DemoQuizText})
	g := newTestGenerator(mock, Config{})

	_, err := g.Generate(context.Background(), Input{Kind: SourceTopic, Topic: "  \t ", QuestionCount: 3})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, 0, mock.CallCount())
}

func TestGenerateRecordsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	g := newTestGenerator(llm.NewMockProvider(llm.MockResponse{Text: llm.DemoQuizText}), Config{})
	g.tracer = tp.Tracer("test")

	_, err := g.Generate(context.Background(), Input{Kind: SourceTopic, Topic: "science", QuestionCount: 3})
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "quizgen.generate", spans[0].Name())
	attrs := map[string]string{}
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	_, dialect := g.extractor.ExtractWithDialect(llm.DemoQuizText)
	assert.Equal(t, dialect, attrs["dialect"])
	assert.Equal(t, "3", attrs["questions.recovered"])
}

func TestGenerateUsesTruncatedText(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrMaxTokensExceeded{Text: llm.DemoQuizText}})
	g := newTestGenerator(mock, Config{})

	questions, err := g.Generate(context.Background(), Input{Kind: SourceTopic, Topic: "x", QuestionCount: 3})
	require.NoError(t, err)
	assert.Len(t, questions, 3)
}

func TestGenerateTruncatesMaterial(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: llm.DemoQuizText})
	g := newTestGenerator(mock, Config{MaxSourceChars: 20})

	material := strings.Repeat("word ", 100)
	_, err := g.Generate(context.Background(), Input{Kind: SourcePDF, Material: material, QuestionCount: 3})
	require.NoError(t, err)
	assert.NotContains(t, mock.Calls[0].Prompt, strings.Repeat("word ", 10))
}

func TestBuildPrompt(t *testing.T) {
	prompt, err := BuildPrompt(Input{Kind: SourceWeb, Material: "page text", Origin: "https://example.com", QuestionCount: 5})
	require.NoError(t, err)
	assert.Contains(t, prompt, "content of a web page (https://example.com)")
	assert.Contains(t, prompt, "page text")
	assert.Contains(t, prompt, "exactly 5 multiple-choice questions")
	assert.Contains(t, prompt, "Correct Answer: [A/B/C/D]")

	pdfPrompt, err := BuildPrompt(Input{Kind: SourcePDF, Material: "doc", QuestionCount: 1})
	require.NoError(t, err)
	assert.Contains(t, pdfPrompt, "content of a PDF document")

	for _, bad := range []Input{
		{Kind: SourceTopic, QuestionCount: 3},
		{Kind: SourcePDF, QuestionCount: 3},
		{Kind: SourceWeb, Material: " \n\t", QuestionCount: 3},
		{Kind: SourceTopic, Topic: "   ", QuestionCount: 3},
		{Kind: SourceTopic, Topic: "x", QuestionCount: 0},
		{Kind: "fax", Topic: "x", QuestionCount: 1},
	} {
		_, err := BuildPrompt(bad)
		assert.ErrorIs(t, err, ErrInvalidInput, "input %+v", bad)
	}
}
