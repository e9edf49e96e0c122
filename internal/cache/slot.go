// Package cache provides the time-bounded configuration cache. Each cached
// payload kind (catalog, advice bands) owns one Slot.
package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Loader fetches a fresh payload. The boolean reports whether the value may
// be cached; fallback-sourced values return false so the next call retries
// the real source instead of pinning a degraded default.
type Loader[T any] func(ctx context.Context) (T, bool, error)

// Slot is a single-entry TTL cache. Entries are replaced atomically; readers
// never observe a partially updated payload. Concurrent misses collapse to a
// single loader invocation.
type Slot[T any] struct {
	ttl time.Duration
	now func() time.Time

	mu         sync.Mutex
	val        T
	has        bool
	capturedAt time.Time

	group singleflight.Group
}

// NewSlot creates a cache slot with the given TTL. A non-positive TTL
// disables caching entirely.
func NewSlot[T any](ttl time.Duration) *Slot[T] {
	return &Slot[T]{ttl: ttl, now: time.Now}
}

// WithNow sets the clock used for TTL checks. Test hook.
func (s *Slot[T]) WithNow(fn func() time.Time) *Slot[T] {
	s.now = fn
	return s
}

// GetOrLoad returns the cached payload while it is fresh, otherwise invokes
// load and stores the result when the loader marks it cacheable.
func (s *Slot[T]) GetOrLoad(ctx context.Context, load Loader[T]) (T, error) {
	if val, ok := s.fresh(); ok {
		return val, nil
	}

	v, err, _ := s.group.Do("load", func() (any, error) {
		// A concurrent caller may have repopulated the slot while this
		// one waited on the flight group.
		if val, ok := s.fresh(); ok {
			return val, nil
		}

		val, cacheable, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if cacheable {
			s.store(val)
		}
		return val, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Invalidate drops the cached entry.
func (s *Slot[T]) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	s.val = zero
	s.has = false
}

func (s *Slot[T]) fresh() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.has || s.ttl <= 0 || s.now().Sub(s.capturedAt) >= s.ttl {
		var zero T
		return zero, false
	}
	return s.val, true
}

func (s *Slot[T]) store(val T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.val = val
	s.has = true
	s.capturedAt = s.now()
}
