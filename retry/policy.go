package retry

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"
)

// Policy decides retry behavior after a failed attempt.
type Policy interface {
	// ShouldRetry reports whether the given attempt (0-based) should be
	// retried after err, and the delay to wait before the next attempt.
	ShouldRetry(attempt int, err error) (bool, time.Duration)
}

// retryable is implemented by errors that know whether they are transient.
type retryable interface {
	IsRetryable() bool
}

// IsRetryable reports whether err (or any error it wraps) marks itself as
// transient. Errors without the marker are treated as permanent.
func IsRetryable(err error) bool {
	var r retryable
	if errors.As(err, &r) {
		return r.IsRetryable()
	}
	return false
}

// ExponentialBackoff retries transient errors with exponentially growing
// delays: InitialDelay, InitialDelay*Multiplier, and so on, capped at
// MaxDelay, for up to MaxAttempts total attempts.
type ExponentialBackoff struct {
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	MaxAttempts  int
	Jitter       bool
}

// NewExponentialBackoff creates a backoff policy with the given parameters.
func NewExponentialBackoff(initial, max time.Duration, multiplier float64, attempts int) *ExponentialBackoff {
	return &ExponentialBackoff{
		InitialDelay: initial,
		MaxDelay:     max,
		Multiplier:   multiplier,
		MaxAttempts:  attempts,
	}
}

// ShouldRetry implements Policy.
func (b *ExponentialBackoff) ShouldRetry(attempt int, err error) (bool, time.Duration) {
	if attempt >= b.MaxAttempts-1 {
		return false, 0
	}
	if !IsRetryable(err) {
		return false, 0
	}
	return true, b.delay(attempt)
}

func (b *ExponentialBackoff) delay(attempt int) time.Duration {
	d := float64(b.InitialDelay) * math.Pow(b.Multiplier, float64(attempt))
	if max := float64(b.MaxDelay); b.MaxDelay > 0 && d > max {
		d = max
	}
	if b.Jitter {
		// +/- 25% to avoid thundering herds on shared providers.
		d = d * (0.75 + rand.Float64()*0.5)
	}
	return time.Duration(d)
}

// Do runs fn until it succeeds, the policy declines to retry, or ctx is
// canceled. It returns the last error observed.
func Do(ctx context.Context, policy Policy, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return lastErr
			}
			return err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		retry, delay := policy.ShouldRetry(attempt, lastErr)
		if !retry {
			return lastErr
		}

		select {
		case <-ctx.Done():
			return lastErr
		case <-time.After(delay):
		}
	}
}
