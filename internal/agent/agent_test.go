package agent

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedSleeps struct {
	delays []time.Duration
}

func (r *recordedSleeps) sleep(ctx context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return ctx.Err()
}

func newTestAgent(p Provider, sleeps *recordedSleeps) *Agent {
	policy := DefaultRetryPolicy()
	policy.Sleep = sleeps.sleep
	return New(p,
		WithRetryPolicy(policy),
		WithAgentLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func TestAgentRetriesThenSucceeds(t *testing.T) {
	mock := NewMockClient()
	mock.Enqueue(
		MockResponse{Err: &TransportError{Err: errors.New("connection reset")}},
		MockResponse{Err: &RateLimitError{Body: "slow down"}},
		MockResponse{Text: "ok"},
	)
	sleeps := &recordedSleeps{}

	got, err := newTestAgent(mock, sleeps).Complete(context.Background(), "prompt", false)
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Len(t, mock.Calls(), 3)
	assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second}, sleeps.delays)
}

func TestAgentExhaustsAttempts(t *testing.T) {
	mock := NewMockClient()
	last := &ServiceError{StatusCode: 503, Body: "unavailable"}
	mock.Enqueue(
		MockResponse{Err: &ServiceError{StatusCode: 500, Body: "boom"}},
		MockResponse{Err: &TransportError{Err: errors.New("timeout")}},
		MockResponse{Err: last},
		MockResponse{Text: "never reached"},
	)
	sleeps := &recordedSleeps{}

	_, err := newTestAgent(mock, sleeps).Complete(context.Background(), "prompt", true)

	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 3, exhausted.Attempts)
	assert.Same(t, last, exhausted.Last)
	assert.Len(t, mock.Calls(), 3)
	assert.Len(t, sleeps.delays, 2)
}

func TestAgentDoesNotRetryUnknownErrors(t *testing.T) {
	mock := NewMockClient()
	plain := errors.New("programming error")
	mock.Enqueue(MockResponse{Err: plain})

	_, err := newTestAgent(mock, &recordedSleeps{}).Complete(context.Background(), "prompt", false)
	assert.ErrorIs(t, err, plain)
	assert.Len(t, mock.Calls(), 1)
}

func TestAgentStopsOnCancelledContext(t *testing.T) {
	t.Run("before first attempt", func(t *testing.T) {
		mock := NewMockClient()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := newTestAgent(mock, &recordedSleeps{}).Complete(ctx, "prompt", false)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, mock.Calls())
	})

	t.Run("during backoff", func(t *testing.T) {
		mock := NewMockClient()
		mock.Enqueue(MockResponse{Err: &TransportError{Err: errors.New("reset")}})

		ctx, cancel := context.WithCancel(context.Background())
		policy := DefaultRetryPolicy()
		policy.Sleep = func(ctx context.Context, d time.Duration) error {
			cancel()
			return ctx.Err()
		}
		a := New(mock, WithRetryPolicy(policy), WithAgentLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

		_, err := a.Complete(ctx, "prompt", false)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Len(t, mock.Calls(), 1)
	})
}

func TestSleepContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, SleepContext(ctx, time.Hour), context.Canceled)
	assert.NoError(t, SleepContext(context.Background(), time.Millisecond))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(&TransportError{Err: io.EOF}))
	assert.True(t, IsRetryable(&RateLimitError{}))
	assert.True(t, IsRetryable(&ServiceError{StatusCode: 500}))
	assert.False(t, IsRetryable(errors.New("plain")))
	assert.False(t, IsRetryable(context.Canceled))
}

func TestMockClientCannedResponses(t *testing.T) {
	mock := NewMockClient()
	ctx := context.Background()

	essence, err := mock.Complete(ctx, "Analyze this story", true)
	require.NoError(t, err)
	assert.Contains(t, essence, `"plot_beats"`)

	storyMap, err := mock.Complete(ctx, "ORIGINAL STORY ELEMENTS:\n{}", true)
	require.NoError(t, err)
	assert.Contains(t, storyMap, `"plot_outline"`)

	prose, err := mock.Complete(ctx, "Write a story", false)
	require.NoError(t, err)
	assert.NotContains(t, prose, "{")
}
