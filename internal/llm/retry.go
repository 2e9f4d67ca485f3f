package llm

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

type retrying struct {
	inner Provider
	cfg   RetryConfig
	sleep func(ctx context.Context, d time.Duration) error
}

// WithRetry retries retryable failures of p with capped exponential
// backoff. An invalid reply is retried at most once; a vendor's
// RetryAfter overrides the backoff.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	return &retrying{inner: p, cfg: cfg, sleep: sleepCtx}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (r *retrying) ModelID() string { return r.inner.ModelID() }

func (r *retrying) Generate(ctx context.Context, req Request) (*Response, error) {
	attempts := max(r.cfg.MaxAttempts, 1)
	invalidSeen := false

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		var resp *Response
		resp, err = r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}

		if ctx.Err() != nil {
			return nil, err
		}
		// Errors that are not *Error come from building the request.
		var le *Error
		if !errors.As(err, &le) {
			return nil, err
		}
		if !le.Retryable() || (le.Kind == KindInvalid && invalidSeen) {
			return nil, err
		}
		if le.Kind == KindInvalid {
			invalidSeen = true
		}
		if attempt == attempts-1 {
			break
		}

		wait := le.RetryAfter
		if wait <= 0 {
			wait = r.backoff(attempt)
		}
		if serr := r.sleep(ctx, wait); serr != nil {
			return nil, serr
		}
	}
	return nil, err
}

// backoff is InitialWait × Multiplier^attempt, capped at MaxWait, with
// ±20% jitter.
func (r *retrying) backoff(attempt int) time.Duration {
	wait := float64(r.cfg.InitialWait)
	for range attempt {
		wait *= r.cfg.Multiplier
	}
	if limit := float64(r.cfg.MaxWait); limit > 0 && wait > limit {
		wait = limit
	}
	wait *= 0.8 + 0.4*rand.Float64()
	return time.Duration(wait)
}
