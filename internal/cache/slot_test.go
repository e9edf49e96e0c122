package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced clock for TTL tests.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func countingLoader(val string, cacheable bool) (Loader[string], *int) {
	calls := new(int)
	return func(ctx context.Context) (string, bool, error) {
		*calls++
		return val, cacheable, nil
	}, calls
}

func TestSlotCachesWithinTTL(t *testing.T) {
	clock := newFakeClock()
	s := NewSlot[string](5 * time.Minute).WithNow(clock.Now)
	load, calls := countingLoader("v1", true)

	for i := 0; i < 3; i++ {
		got, err := s.GetOrLoad(context.Background(), load)
		require.NoError(t, err)
		assert.Equal(t, "v1", got)
	}

	assert.Equal(t, 1, *calls)
}

func TestSlotReloadsAfterTTL(t *testing.T) {
	clock := newFakeClock()
	s := NewSlot[string](5 * time.Minute).WithNow(clock.Now)
	load, calls := countingLoader("v1", true)

	_, err := s.GetOrLoad(context.Background(), load)
	require.NoError(t, err)

	clock.Advance(5 * time.Minute)

	_, err = s.GetOrLoad(context.Background(), load)
	require.NoError(t, err)
	assert.Equal(t, 2, *calls, "entry at exactly TTL age is stale")
}

func TestSlotDoesNotCacheFallbackResults(t *testing.T) {
	clock := newFakeClock()
	s := NewSlot[string](5 * time.Minute).WithNow(clock.Now)
	load, calls := countingLoader("degraded", false)

	for i := 0; i < 3; i++ {
		got, err := s.GetOrLoad(context.Background(), load)
		require.NoError(t, err)
		assert.Equal(t, "degraded", got)
	}

	assert.Equal(t, 3, *calls, "non-cacheable results must reload every call")
}

func TestSlotErrorNotCached(t *testing.T) {
	clock := newFakeClock()
	s := NewSlot[string](5 * time.Minute).WithNow(clock.Now)

	calls := 0
	load := func(ctx context.Context) (string, bool, error) {
		calls++
		if calls == 1 {
			return "", false, errors.New("boom")
		}
		return "ok", true, nil
	}

	_, err := s.GetOrLoad(context.Background(), load)
	require.Error(t, err)

	got, err := s.GetOrLoad(context.Background(), load)
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}

func TestSlotZeroTTLDisablesCaching(t *testing.T) {
	s := NewSlot[string](0)
	load, calls := countingLoader("v1", true)

	for i := 0; i < 2; i++ {
		_, err := s.GetOrLoad(context.Background(), load)
		require.NoError(t, err)
	}

	assert.Equal(t, 2, *calls)
}

func TestSlotInvalidate(t *testing.T) {
	clock := newFakeClock()
	s := NewSlot[string](time.Hour).WithNow(clock.Now)
	load, calls := countingLoader("v1", true)

	_, err := s.GetOrLoad(context.Background(), load)
	require.NoError(t, err)

	s.Invalidate()

	_, err = s.GetOrLoad(context.Background(), load)
	require.NoError(t, err)
	assert.Equal(t, 2, *calls)
}

func TestSlotCollapsesConcurrentLoads(t *testing.T) {
	clock := newFakeClock()
	s := NewSlot[string](time.Hour).WithNow(clock.Now)

	var mu sync.Mutex
	calls := 0
	started := make(chan struct{})
	release := make(chan struct{})

	load := func(ctx context.Context) (string, bool, error) {
		mu.Lock()
		calls++
		first := calls == 1
		mu.Unlock()
		if first {
			close(started)
			<-release
		}
		return "v1", true, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := s.GetOrLoad(context.Background(), load)
			assert.NoError(t, err)
			assert.Equal(t, "v1", got)
		}()
	}

	<-started
	// All five goroutines are either in flight-group wait or about to be.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.LessOrEqual(t, calls, 2, "concurrent misses must collapse")
}
