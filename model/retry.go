package model

import (
	"context"
	"errors"
	"time"

	"github.com/hupe1980/hireflow/core"
)

// RetryPolicy governs how transient model failures are retried. Backoff is
// exponential: InitialBackoff doubled (or multiplied by Multiplier) per
// attempt, capped at MaxBackoff. A provider-supplied RetryAfter overrides the
// computed delay.
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Multiplier     float64
}

// DefaultRetryPolicy returns the policy used when none is configured.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    3,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     8 * time.Second,
		Multiplier:     2.0,
	}
}

// Do invokes fn until it succeeds, returns a non-retryable error, or the
// attempt budget is exhausted. Exhaustion yields *core.ModelUnavailableError
// wrapping the last provider error, so callers can degrade gracefully instead
// of leaking transport details.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	multiplier := p.Multiplier
	if multiplier < 1 {
		multiplier = 2.0
	}

	backoff := p.InitialBackoff
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}

	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		if !IsRetryable(lastErr) {
			return lastErr
		}

		if attempt == attempts {
			break
		}

		delay := backoff

		var rle *RateLimitError
		if errors.As(lastErr, &rle) && rle.RetryAfter > 0 {
			delay = rle.RetryAfter
		}

		if p.MaxBackoff > 0 && delay > p.MaxBackoff {
			delay = p.MaxBackoff
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		backoff = time.Duration(float64(backoff) * multiplier)
		if p.MaxBackoff > 0 && backoff > p.MaxBackoff {
			backoff = p.MaxBackoff
		}
	}

	return &core.ModelUnavailableError{Attempts: attempts, Err: lastErr}
}
