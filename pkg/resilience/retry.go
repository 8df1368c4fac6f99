package resilience

import (
	"context"
	"time"
)

// Retry runs op up to maxAttempts times, sleeping per the backoff strategy
// between attempts. retryable decides which errors are worth another attempt;
// all other errors return immediately. Only safe for idempotent operations.
func Retry(ctx context.Context, maxAttempts int, backoff BackoffStrategy, retryable func(error) bool, op func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff.NextDelay(attempt - 1)):
			}
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if !retryable(lastErr) {
			return lastErr
		}
	}
	return lastErr
}
