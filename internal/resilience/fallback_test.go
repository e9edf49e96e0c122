package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func TestChainFirstSuccessWins(t *testing.T) {
	var secondCalled bool
	c := NewChain("test",
		Strategy[int]{Name: "a", Fetch: func(ctx context.Context) (int, error) { return 1, nil }},
		Strategy[int]{Name: "b", Fetch: func(ctx context.Context) (int, error) {
			secondCalled = true
			return 2, nil
		}},
	)

	val, fallback, err := c.Resolve(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, val)
	assert.False(t, fallback)
	assert.False(t, secondCalled)
}

func TestChainAdvancesPastFailures(t *testing.T) {
	c := NewChain("test",
		Strategy[int]{Name: "a", Fetch: func(ctx context.Context) (int, error) { return 0, errors.New("a down") }},
		Strategy[int]{Name: "b", Fetch: func(ctx context.Context) (int, error) { return 2, nil }},
	)

	val, fallback, err := c.Resolve(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, val)
	assert.False(t, fallback)
}

func TestChainReportsFallbackFlag(t *testing.T) {
	c := NewChain("test",
		Strategy[int]{Name: "a", Fetch: func(ctx context.Context) (int, error) { return 0, errors.New("a down") }},
		Strategy[int]{Name: "static", Fallback: true, Fetch: func(ctx context.Context) (int, error) { return 9, nil }},
	)

	val, fallback, err := c.Resolve(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 9, val)
	assert.True(t, fallback)
}

func TestChainAllStrategiesFail(t *testing.T) {
	c := NewChain("test",
		Strategy[int]{Name: "a", Fetch: func(ctx context.Context) (int, error) { return 0, errors.New("a down") }},
		Strategy[int]{Name: "b", Fetch: func(ctx context.Context) (int, error) { return 0, errors.New("b down") }},
	)

	_, _, err := c.Resolve(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "b down")
}

func TestChainEmpty(t *testing.T) {
	c := NewChain[int]("empty")

	_, _, err := c.Resolve(context.Background())

	require.Error(t, err)
}

func TestChainStopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var secondCalled bool
	c := NewChain("test",
		Strategy[int]{Name: "a", Fetch: func(ctx context.Context) (int, error) {
			cancel()
			return 0, errors.New("a down")
		}},
		Strategy[int]{Name: "b", Fetch: func(ctx context.Context) (int, error) {
			secondCalled = true
			return 2, nil
		}},
	)

	_, _, err := c.Resolve(ctx)

	require.Error(t, err)
	assert.False(t, secondCalled)
}

func TestWithBreakerSkipsWhileOpen(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1})
	s := WithBreaker(Strategy[int]{
		Name:  "guarded",
		Fetch: func(ctx context.Context) (int, error) { return 0, errors.New("down") },
	}, cb)

	_, err := s.Fetch(context.Background())
	require.Error(t, err)

	_, err = s.Fetch(context.Background())
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestWithRetryRetriesTransient(t *testing.T) {
	calls := 0
	s := WithRetry(Strategy[int]{
		Name: "flaky",
		Fetch: func(ctx context.Context) (int, error) {
			calls++
			if calls < 2 {
				return 0, NewTransientError(errors.New("timeout"), 0)
			}
			return 7, nil
		},
	}, RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond})

	val, err := s.Fetch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 7, val)
	assert.Equal(t, 2, calls)
}
