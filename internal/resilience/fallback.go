package resilience

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Strategy is one named access path in a fallback chain.
type Strategy[T any] struct {
	// Name identifies the strategy in logs.
	Name string

	// Fallback marks a static default whose result must not be cached, so
	// the next read retries the real sources.
	Fallback bool

	// Fetch performs the read.
	Fetch func(ctx context.Context) (T, error)
}

// Chain evaluates an ordered list of strategies, first success wins.
// Intermediate failures are logged, never surfaced; an error is returned only
// when every strategy fails. Chains that end in a static default therefore
// never fail in practice.
type Chain[T any] struct {
	name       string
	strategies []Strategy[T]
}

// NewChain creates a fallback chain. The name labels log entries.
func NewChain[T any](name string, strategies ...Strategy[T]) *Chain[T] {
	return &Chain[T]{name: name, strategies: strategies}
}

// Resolve tries each strategy in order. The boolean reports whether the value
// came from a fallback strategy.
func (c *Chain[T]) Resolve(ctx context.Context) (T, bool, error) {
	var zero T
	var lastErr error

	for _, s := range c.strategies {
		val, err := s.Fetch(ctx)
		if err == nil {
			return val, s.Fallback, nil
		}
		lastErr = err
		zap.L().Warn("fallback strategy failed",
			zap.String("chain", c.name),
			zap.String("strategy", s.Name),
			zap.Error(err),
		)
		if ctx.Err() != nil {
			break
		}
	}

	if lastErr == nil {
		lastErr = eris.Errorf("resilience: chain %s has no strategies", c.name)
	}
	return zero, false, eris.Wrapf(lastErr, "resilience: chain %s exhausted", c.name)
}

// WithBreaker wraps a strategy so its fetch is skipped fast while the guarded
// source is tripping.
func WithBreaker[T any](s Strategy[T], cb *CircuitBreaker) Strategy[T] {
	fetch := s.Fetch
	s.Fetch = func(ctx context.Context) (T, error) {
		return ExecuteVal(ctx, cb, fetch)
	}
	return s
}

// WithRetry wraps a strategy with transient-error retries.
func WithRetry[T any](s Strategy[T], cfg RetryConfig) Strategy[T] {
	fetch := s.Fetch
	name := s.Name
	s.Fetch = func(ctx context.Context) (T, error) {
		return DoVal(ctx, cfg, name, fetch)
	}
	return s
}
