package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	generrors "github.com/Johtaguerrero/artigogenio/internal/domain/errors"
	"github.com/Johtaguerrero/artigogenio/internal/domain/retry"
)

func TestPolicy_Delay(t *testing.T) {
	tests := []struct {
		name     string
		policy   retry.Policy
		attempt  int
		expected time.Duration
	}{
		{
			name:     "attempt zero has no delay",
			policy:   retry.Policy{InitialDelay: 2 * time.Second, BackoffFactor: 2},
			attempt:  0,
			expected: 0,
		},
		{
			name:     "first retry uses initial delay",
			policy:   retry.Policy{InitialDelay: 2 * time.Second, BackoffFactor: 2},
			attempt:  1,
			expected: 2 * time.Second,
		},
		{
			name:     "exponential growth",
			policy:   retry.Policy{InitialDelay: 2 * time.Second, BackoffFactor: 2},
			attempt:  3,
			expected: 8 * time.Second,
		},
		{
			name:     "capped at max delay",
			policy:   retry.Policy{InitialDelay: 2 * time.Second, MaxDelay: 5 * time.Second, BackoffFactor: 2},
			attempt:  10,
			expected: 5 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.policy.Delay(tt.attempt); got != tt.expected {
				t.Errorf("Policy.Delay(%d) = %v, want %v", tt.attempt, got, tt.expected)
			}
		})
	}
}

func TestPolicy_DelayJitterBounds(t *testing.T) {
	policy := retry.Policy{InitialDelay: time.Second, BackoffFactor: 2, JitterFactor: 0.1}
	for i := 0; i < 50; i++ {
		got := policy.Delay(1)
		if got < 900*time.Millisecond || got > 1100*time.Millisecond {
			t.Fatalf("Policy.Delay(1) = %v, want within 10%% of 1s", got)
		}
	}
}

func TestDo(t *testing.T) {
	fast := retry.Policy{MaxRetries: 3, InitialDelay: time.Millisecond, BackoffFactor: 2}

	t.Run("succeeds on first attempt", func(t *testing.T) {
		calls := 0
		result, err := retry.Do(context.Background(), fast, "test", func(ctx context.Context) (string, error) {
			calls++
			return "ok", nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result != "ok" || calls != 1 {
			t.Errorf("got result=%q calls=%d, want ok/1", result, calls)
		}
	})

	t.Run("retries retryable errors until success", func(t *testing.T) {
		calls := 0
		result, err := retry.Do(context.Background(), fast, "test", func(ctx context.Context) (int, error) {
			calls++
			if calls < 3 {
				return 0, generrors.New(generrors.KindRateLimit, "slow down")
			}
			return 42, nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result != 42 || calls != 3 {
			t.Errorf("got result=%d calls=%d, want 42/3", result, calls)
		}
	})

	t.Run("does not retry non-retryable errors", func(t *testing.T) {
		calls := 0
		_, err := retry.Do(context.Background(), fast, "test", func(ctx context.Context) (int, error) {
			calls++
			return 0, generrors.New(generrors.KindCredentials, "bad key")
		})
		if generrors.KindOf(err) != generrors.KindCredentials {
			t.Fatalf("expected credentials error, got %v", err)
		}
		if calls != 1 {
			t.Errorf("expected 1 call, got %d", calls)
		}
	})

	t.Run("exhausts budget and returns last error", func(t *testing.T) {
		calls := 0
		_, err := retry.Do(context.Background(), fast, "test", func(ctx context.Context) (int, error) {
			calls++
			return 0, generrors.New(generrors.KindUnavailable, "still down")
		})
		if generrors.KindOf(err) != generrors.KindUnavailable {
			t.Fatalf("expected unavailable error, got %v", err)
		}
		if calls != fast.MaxRetries+1 {
			t.Errorf("expected %d calls, got %d", fast.MaxRetries+1, calls)
		}
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := retry.Do(ctx, fast, "test", func(ctx context.Context) (int, error) {
			return 0, errors.New("should not run")
		})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("no-retry policy makes exactly one attempt", func(t *testing.T) {
		calls := 0
		_, err := retry.Do(context.Background(), retry.NoRetryPolicy(), "test", func(ctx context.Context) (int, error) {
			calls++
			return 0, generrors.New(generrors.KindRateLimit, "slow down")
		})
		if err == nil || calls != 1 {
			t.Errorf("got err=%v calls=%d, want error after exactly 1 call", err, calls)
		}
	})
}
