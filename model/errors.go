package model

import (
	"errors"
	"fmt"
	"time"
)

// RateLimitError indicates the provider rejected a request due to throttling.
// RetryAfter is zero when the provider did not suggest a delay.
type RateLimitError struct {
	Provider   string
	RetryAfter time.Duration
	Err        error
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s: rate limited, retry after %s", e.Provider, e.RetryAfter)
	}
	return fmt.Sprintf("%s: rate limited", e.Provider)
}

// Unwrap returns the underlying provider error.
func (e *RateLimitError) Unwrap() error { return e.Err }

// MalformedOutputError indicates the model returned text that could not be
// parsed into the requested structure. Raw carries the offending output for
// logging; it is never surfaced to users.
type MalformedOutputError struct {
	Raw    string
	Reason string
}

// Error implements the error interface.
func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("malformed model output: %s", e.Reason)
}

// IsRetryable reports whether a model error is transient and worth retrying.
// Only rate limiting qualifies; malformed output is handled by prompt
// reformulation, not by resubmitting the same request.
func IsRetryable(err error) bool {
	var rle *RateLimitError
	return errors.As(err, &rle)
}
