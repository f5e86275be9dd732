package resilience

import (
	"context"
	"sync"
	"time"
)

// Throttle serializes callers and keeps at least delay between the end of
// one call and the start of the next.
type Throttle struct {
	mu    sync.Mutex
	delay time.Duration
	last  time.Time
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewThrottle(delay time.Duration) *Throttle {
	return &Throttle{
		delay: delay,
		now:   time.Now,
		sleep: sleepContext,
	}
}

// Do waits for the next free slot and runs fn while holding it, so no two
// fn calls overlap.
func (t *Throttle) Do(ctx context.Context, fn func(context.Context) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.last.IsZero() && t.delay > 0 {
		if wait := t.delay - t.now().Sub(t.last); wait > 0 {
			if err := t.sleep(ctx, wait); err != nil {
				return err
			}
		}
	}

	defer func() { t.last = t.now() }()
	return fn(ctx)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Sleep blocks for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	return sleepContext(ctx, d)
}
