package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type fakeClock struct {
	now   time.Time
	slept []time.Duration
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(_ context.Context, d time.Duration) error {
	c.slept = append(c.slept, d)
	c.now = c.now.Add(d)
	return nil
}

func newTestWindow(maxCalls int, period time.Duration) (*SlidingWindow, *fakeClock) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	w := NewSlidingWindow("test", maxCalls, period)
	w.now = clock.Now
	w.sleep = clock.Sleep
	return w, clock
}

func TestSlidingWindowThirdCallBlocksForPeriod(t *testing.T) {
	w, clock := newTestWindow(2, 10*time.Second)
	start := clock.now

	for i := 0; i < 3; i++ {
		require.NoError(t, w.Wait(context.Background()))
	}

	assert.Equal(t, []time.Duration{10 * time.Second}, clock.slept)
	assert.Equal(t, 10*time.Second, clock.now.Sub(start))
	assert.Equal(t, 1, w.Len())
}

func TestSlidingWindowNoDelayUnderCapacity(t *testing.T) {
	w, clock := newTestWindow(50, time.Minute)

	for i := 0; i < 50; i++ {
		require.NoError(t, w.Wait(context.Background()))
		clock.now = clock.now.Add(100 * time.Millisecond)
	}

	assert.Empty(t, clock.slept)
	assert.Equal(t, 50, w.Len())
}

func TestSlidingWindowWaitsOnlyForOldestCall(t *testing.T) {
	w, clock := newTestWindow(2, 10*time.Second)

	require.NoError(t, w.Wait(context.Background()))
	clock.now = clock.now.Add(4 * time.Second)
	require.NoError(t, w.Wait(context.Background()))
	clock.now = clock.now.Add(1 * time.Second)
	require.NoError(t, w.Wait(context.Background()))

	// oldest call was at t=0, current time t=5s
	assert.Equal(t, []time.Duration{5 * time.Second}, clock.slept)
}

func TestSlidingWindowPrunesExpiredCalls(t *testing.T) {
	w, clock := newTestWindow(2, 10*time.Second)

	require.NoError(t, w.Wait(context.Background()))
	require.NoError(t, w.Wait(context.Background()))
	clock.now = clock.now.Add(11 * time.Second)

	assert.Equal(t, 0, w.Len())
	require.NoError(t, w.Wait(context.Background()))
	assert.Empty(t, clock.slept)
}

func TestSlidingWindowContextCancelled(t *testing.T) {
	w := NewSlidingWindow("test", 1, time.Hour)
	require.NoError(t, w.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := w.Wait(ctx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestSlidingWindowRealClock(t *testing.T) {
	w := NewSlidingWindow("test", 2, 100*time.Millisecond)

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, w.Wait(context.Background()))
	}
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestChainWaitsOnAllLimiters(t *testing.T) {
	first, firstClock := newTestWindow(1, time.Second)
	second, secondClock := newTestWindow(5, time.Second)
	chain := Chain{first, nil, second, rate.NewLimiter(rate.Inf, 1)}

	require.NoError(t, chain.Wait(context.Background()))
	require.NoError(t, chain.Wait(context.Background()))

	assert.Equal(t, []time.Duration{time.Second}, firstClock.slept)
	assert.Empty(t, secondClock.slept)
	assert.Equal(t, 2, second.Len())
}
