package app

import (
	"context"
	"log/slog"
	"time"
)

// retryPolicy retries table admin calls while the store comes up.
type retryPolicy struct {
	attempts       int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

var defaultRetryPolicy = retryPolicy{
	attempts:       5,
	initialBackoff: 200 * time.Millisecond,
	maxBackoff:     5 * time.Second,
}

// do calls fn until it succeeds, the attempts run out, or ctx is done.
// Backoff doubles after each failure up to maxBackoff.
func (p retryPolicy) do(ctx context.Context, logger *slog.Logger, op string, fn func() error) error {
	backoff := p.initialBackoff
	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt >= p.attempts || ctx.Err() != nil {
			return err
		}

		logger.Warn("retrying", "op", op, "attempt", attempt, "backoff", backoff, "error", err)
		if !sleepWithContext(ctx, backoff) {
			return err
		}
		backoff = nextBackoff(backoff, p.maxBackoff)
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
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
