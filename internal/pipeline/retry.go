package pipeline

import (
	"context"
	"time"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// retry is an exponential backoff that doubles after every wait up to a cap
// and returns to its initial delay on reset.
type retry struct {
	initial time.Duration
	max     time.Duration
	current time.Duration
}

func newRetry(initial, limit time.Duration) *retry {
	return &retry{initial: initial, max: limit, current: initial}
}

// wait sleeps for the current delay and then doubles it. It returns false if
// ctx is done first.
func (r *retry) wait(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	if !sleepWithContext(ctx, r.current) {
		return false
	}
	r.current = min(r.current*2, r.max)
	return true
}

func (r *retry) reset() {
	r.current = r.initial
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
