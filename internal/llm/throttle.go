package llm

import (
	"context"
	"sync"
	"time"
)

// Throttle enforces a minimum interval between outbound model calls across
// every in-flight request. Callers reserve a slot under the mutex and then
// sleep outside it, so concurrent requests serialize their start times
// without holding the lock while waiting.
type Throttle struct {
	mu       sync.Mutex
	next     time.Time
	interval time.Duration
}

// NewThrottle creates a throttle with the given minimum interval between
// calls. A zero or negative interval disables throttling.
func NewThrottle(interval time.Duration) *Throttle {
	return &Throttle{interval: interval}
}

// Wait blocks until this caller's reserved slot arrives or ctx is done.
func (t *Throttle) Wait(ctx context.Context) error {
	if t == nil || t.interval <= 0 {
		return nil
	}

	t.mu.Lock()
	now := time.Now()
	slot := t.next
	if slot.Before(now) {
		slot = now
	}
	t.next = slot.Add(t.interval)
	t.mu.Unlock()

	wait := time.Until(slot)
	if wait <= 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
