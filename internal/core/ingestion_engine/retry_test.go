package ingestion_engine

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinearBackoff(t *testing.T) {
	policy := LinearBackoff(time.Second)
	assert.Equal(t, time.Duration(0), policy(0))
	assert.Equal(t, time.Second, policy(1))
	assert.Equal(t, 2*time.Second, policy(2))
	assert.Equal(t, 5*time.Second, policy(5))
}

func TestRetryWithPolicy_EventualSuccess(t *testing.T) {
	attempts := 0
	var waited []int
	policy := func(attempt int) time.Duration {
		waited = append(waited, attempt)
		return time.Millisecond
	}

	err := retryWithPolicy(context.Background(), slog.Default(), 3, policy, func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("temporary error")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, []int{1, 2}, waited, "backoff is consulted with the failed attempt number")
}

func TestRetryWithPolicy_AllAttemptsFail(t *testing.T) {
	attempts := 0
	expected := errors.New("persistent error")

	err := retryWithPolicy(context.Background(), slog.Default(), 3, LinearBackoff(time.Millisecond), func(ctx context.Context) error {
		attempts++
		return expected
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, expected)
	assert.Equal(t, 3, attempts)
}

func TestRetryWithPolicy_SingleAttempt(t *testing.T) {
	attempts := 0
	err := retryWithPolicy(context.Background(), slog.Default(), 0, LinearBackoff(time.Millisecond), func(ctx context.Context) error {
		attempts++
		return errors.New("boom")
	})
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestRetryWithPolicy_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0

	err := retryWithPolicy(ctx, slog.Default(), 10, LinearBackoff(10*time.Millisecond), func(ctx context.Context) error {
		attempts++
		if attempts == 2 {
			cancel()
		}
		return errors.New("error")
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, attempts)
}
