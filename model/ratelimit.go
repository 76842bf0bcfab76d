package model

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimitedModel wraps a Model with a client-side token-bucket limiter so
// bursts of concurrent tasks do not trip provider quotas in the first place.
type RateLimitedModel struct {
	inner   Model
	limiter *rate.Limiter
}

// NewRateLimitedModel wraps inner with a limiter of rps requests per second
// and the given burst size.
func NewRateLimitedModel(inner Model, rps float64, burst int) *RateLimitedModel {
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedModel{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Complete waits for limiter capacity, then delegates to the wrapped model.
func (m *RateLimitedModel) Complete(ctx context.Context, req Request) (Response, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return Response{}, err
	}
	return m.inner.Complete(ctx, req)
}

// Info implements Model.
func (m *RateLimitedModel) Info() Info { return m.inner.Info() }
