package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Limiter blocks until a call may proceed. *rate.Limiter satisfies it as well.
type Limiter interface {
	Wait(ctx context.Context) error
}

// SlidingWindow allows at most maxCalls calls in any rolling period.
// It only delays callers, it never rejects them.
type SlidingWindow struct {
	name     string
	maxCalls int
	period   time.Duration

	mu    sync.Mutex
	calls []time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewSlidingWindow(name string, maxCalls int, period time.Duration) *SlidingWindow {
	if maxCalls < 1 {
		maxCalls = 1
	}
	return &SlidingWindow{
		name:     name,
		maxCalls: maxCalls,
		period:   period,
		now:      time.Now,
		sleep:    sleepContext,
	}
}

func (w *SlidingWindow) Wait(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for {
		now := w.now()
		w.prune(now)
		if len(w.calls) < w.maxCalls {
			w.calls = append(w.calls, now)
			return nil
		}

		delay := w.period - now.Sub(w.calls[0])
		if delay <= 0 {
			// oldest call is exactly on the window edge
			w.calls = w.calls[1:]
			continue
		}

		log.Info().
			Str("endpoint", w.name).
			Dur("delay", delay).
			Int("max_calls", w.maxCalls).
			Dur("period", w.period).
			Msg("Rate limit reached, sleeping")

		if err := w.sleep(ctx, delay); err != nil {
			return err
		}
	}
}

// Len reports how many calls are currently inside the window.
func (w *SlidingWindow) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.prune(w.now())
	return len(w.calls)
}

func (w *SlidingWindow) prune(now time.Time) {
	keep := 0
	for _, t := range w.calls {
		if now.Sub(t) < w.period {
			break
		}
		keep++
	}
	if keep > 0 {
		w.calls = append(w.calls[:0], w.calls[keep:]...)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Chain waits on every limiter in order.
type Chain []Limiter

func (c Chain) Wait(ctx context.Context) error {
	for _, l := range c {
		if l == nil {
			continue
		}
		if err := l.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}
