// Package retry defines retry policies and a backoff executor for
// external generation calls.
package retry

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"

	generrors "github.com/Johtaguerrero/artigogenio/internal/domain/errors"
)

// Policy defines a retry strategy.
type Policy struct {
	MaxRetries    int           `json:"max_retries"`
	InitialDelay  time.Duration `json:"initial_delay"`
	MaxDelay      time.Duration `json:"max_delay"`
	BackoffFactor float64       `json:"backoff_factor"`
	JitterFactor  float64       `json:"jitter_factor"` // 0.0-1.0
}

// TextPolicy returns the default policy for text generation calls.
// Text quota windows are short, so retrying aggressively pays off.
func TextPolicy() Policy {
	return Policy{
		MaxRetries:    3,
		InitialDelay:  2 * time.Second,
		MaxDelay:      30 * time.Second,
		BackoffFactor: 2,
		JitterFactor:  0.1,
	}
}

// ImagePolicy returns the default policy for image rendering calls.
// Image rate-limit windows are far longer, so fewer attempts with a
// longer initial delay.
func ImagePolicy() Policy {
	return Policy{
		MaxRetries:    1,
		InitialDelay:  8 * time.Second,
		MaxDelay:      30 * time.Second,
		BackoffFactor: 2,
		JitterFactor:  0.1,
	}
}

// NoRetryPolicy returns a policy that never retries.
func NoRetryPolicy() Policy {
	return Policy{MaxRetries: 0}
}

// Delay calculates the sleep before the given retry attempt (1-based).
func (p Policy) Delay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	factor := p.BackoffFactor
	if factor <= 0 {
		factor = 2
	}
	delay := float64(p.InitialDelay) * math.Pow(factor, float64(attempt-1))
	if p.MaxDelay > 0 && delay > float64(p.MaxDelay) {
		delay = float64(p.MaxDelay)
	}
	if p.JitterFactor > 0 {
		jitter := delay * p.JitterFactor * (rand.Float64()*2 - 1)
		delay += jitter
		if delay < 0 {
			delay = 0
		}
	}
	return time.Duration(delay)
}

// Do executes fn, retrying on errors classified as retryable until the
// policy's budget is spent. Non-retryable errors propagate unchanged.
// The sleep between attempts honors context cancellation.
func Do[T any](ctx context.Context, policy Policy, operation string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn(ctx)
		if err == nil {
			if attempt > 0 {
				log.Info().
					Str("operation", operation).
					Int("attempt", attempt+1).
					Msg("operation succeeded after retry")
			}
			return result, nil
		}
		lastErr = err

		if !generrors.IsRetryable(err) {
			log.Debug().
				Err(err).
				Str("operation", operation).
				Msg("non-retryable error, aborting")
			return zero, err
		}
		if attempt == policy.MaxRetries {
			break
		}

		delay := policy.Delay(attempt + 1)
		log.Warn().
			Err(err).
			Str("operation", operation).
			Int("attempt", attempt+1).
			Int("max_attempts", policy.MaxRetries+1).
			Dur("retry_delay", delay).
			Msg("retrying operation after error")

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
	}

	return zero, lastErr
}
