package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

type Policy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	MaxElapsedTime  time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:     3,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		Multiplier:      2.0,
		MaxElapsedTime:  30 * time.Second,
	}
}

// Retry runs fn with exponential backoff until it succeeds, the
// attempt budget is spent, or the context is canceled.
func Retry(ctx context.Context, policy Policy, fn func() error) error {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 3
	}

	expBackoff := backoff.NewExponentialBackOff()
	if policy.InitialInterval > 0 {
		expBackoff.InitialInterval = policy.InitialInterval
	}
	if policy.MaxInterval > 0 {
		expBackoff.MaxInterval = policy.MaxInterval
	}
	if policy.Multiplier > 0 {
		expBackoff.Multiplier = policy.Multiplier
	}
	if policy.MaxElapsedTime > 0 {
		expBackoff.MaxElapsedTime = policy.MaxElapsedTime
	}

	var b backoff.BackOff = backoff.WithMaxRetries(expBackoff, uint64(policy.MaxAttempts-1))
	b = backoff.WithContext(b, ctx)

	return backoff.Retry(fn, b)
}
