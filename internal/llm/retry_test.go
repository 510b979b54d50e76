package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRetry(inner Provider, attempts int) (*RetryProvider, *[]time.Duration) {
	var waits []time.Duration
	r := WithRetry(inner, RetryConfig{
		MaxAttempts: attempts,
		InitialWait: 100 * time.Millisecond,
		MaxWait:     time.Second,
		Multiplier:  2,
	}).(*RetryProvider)
	r.sleep = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}
	return r, &waits
}

func TestRetryRecoversFromTransientErrors(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrProviderUnavailable{}},
		MockResponse{Err: &ErrRateLimit{RetryAfter: 3 * time.Second}},
		MockResponse{Text: "ok"},
	)
	r, waits := newTestRetry(mock, 3)

	resp, err := r.Generate(context.Background(), Request{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Text)
	assert.Equal(t, 3, mock.CallCount())
	require.Len(t, *waits, 2)
	assert.Equal(t, 3*time.Second, (*waits)[1])
}

func TestRetryGivesUpAfterMaxAttempts(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrProviderUnavailable{}},
		MockResponse{Err: &ErrProviderUnavailable{}},
	)
	r, waits := newTestRetry(mock, 2)

	_, err := r.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	require.ErrorAs(t, err, &unavail)
	assert.Equal(t, 2, mock.CallCount())
	assert.Len(t, *waits, 1)
}

func TestRetrySkipsPermanentErrors(t *testing.T) {
	for _, permanent := range []error{
		context.Canceled,
		&ErrMaxTokensExceeded{},
		errors.New("request rejected"),
	} {
		mock := NewMockProvider(MockResponse{Err: permanent}, MockResponse{Text: "unused"})
		r, _ := newTestRetry(mock, 3)

		_, err := r.Generate(context.Background(), Request{})
		assert.ErrorIs(t, err, permanent)
		assert.Equal(t, 1, mock.CallCount())
	}
}

func TestBackoffIsBounded(t *testing.T) {
	r, _ := newTestRetry(NewMockProvider(), 5)
	for attempt := 0; attempt < 5; attempt++ {
		wait := r.backoff(attempt, &ErrProviderUnavailable{})
		assert.LessOrEqual(t, wait, 1200*time.Millisecond)
		assert.GreaterOrEqual(t, wait, 80*time.Millisecond)
	}
}

type blockingProvider struct{}

func (blockingProvider) Generate(ctx context.Context, _ Request) (*Response, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingProvider) ModelID() string { return "blocking" }

func TestDeadlineBoundsGenerate(t *testing.T) {
	p := WithDeadline(blockingProvider{}, RetryConfig{MaxAttempts: 3}, 20*time.Millisecond)

	start := time.Now()
	_, err := p.Generate(context.Background(), Request{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}
