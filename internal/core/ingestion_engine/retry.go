package ingestion_engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
)

// BackoffPolicy maps a failed attempt number (1-based) to the wait before the next attempt.
type BackoffPolicy func(attempt int) time.Duration

// LinearBackoff waits attempt*base after each failure.
func LinearBackoff(base time.Duration) BackoffPolicy {
	return func(attempt int) time.Duration {
		if attempt < 1 {
			return 0
		}
		return time.Duration(attempt) * base
	}
}

// retryWithPolicy runs op up to attempts times, sleeping policy(n) after failure n.
// The error of the last attempt is returned unwrapped.
func retryWithPolicy(ctx context.Context, logger *slog.Logger, attempts int, policy BackoffPolicy, op func(ctx context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}

	attempt := 0
	backoff := retry.WithMaxRetries(uint64(attempts-1), retry.BackoffFunc(func() (time.Duration, bool) {
		return policy(attempt), false
	}))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := op(ctx); err != nil {
			if attempt < attempts {
				logger.Warn("retrying after failure", "attempt", attempt, "max_attempts", attempts, "err", err)
			}
			return retry.RetryableError(err)
		}
		return nil
	})
}
