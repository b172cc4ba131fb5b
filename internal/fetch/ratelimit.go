package fetch

import (
	"context"
	"sync"
	"time"
)

// HostLimiter enforces a minimum interval between requests to the same host.
// It is the politeness policy consulted by Client before each request, so the
// delay is explicit and testable rather than buried in ad-hoc sleeps.
type HostLimiter struct {
	// MinInterval is the minimum gap between two requests to one host.
	// Zero disables limiting.
	MinInterval time.Duration

	mu   sync.Mutex
	last map[string]time.Time
	// now and sleep are test seams.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// Wait blocks until a request to host is permitted or ctx is done. Hosts are
// tracked independently so one slow host never delays another.
func (l *HostLimiter) Wait(ctx context.Context, host string) error {
	if l == nil || l.MinInterval <= 0 {
		return nil
	}
	l.mu.Lock()
	if l.last == nil {
		l.last = make(map[string]time.Time)
	}
	if l.now == nil {
		l.now = time.Now
	}
	if l.sleep == nil {
		l.sleep = sleepCtx
	}
	now := l.now()
	wait := time.Duration(0)
	if prev, ok := l.last[host]; ok {
		if due := prev.Add(l.MinInterval); due.After(now) {
			wait = due.Sub(now)
		}
	}
	// Reserve the slot before sleeping so concurrent callers queue up rather
	// than all observing the same last-request time.
	l.last[host] = now.Add(wait)
	l.mu.Unlock()

	if wait <= 0 {
		return nil
	}
	return l.sleep(ctx, wait)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
