package crawler

import (
	"context"
	"time"
)

// RetryOptions controls the exponential-backoff executor.
type RetryOptions struct {
	// MaxAttempts is the total number of invocations, including the first.
	MaxAttempts int
	// InitialDelay is the wait before the second attempt.
	InitialDelay time.Duration
	// Multiplier scales the delay after each failed attempt.
	Multiplier float64
	// MaxDelay caps the backoff wait.
	MaxDelay time.Duration
	// ShouldRetry, when set, classifies an error; returning false re-raises
	// immediately without further attempts.
	ShouldRetry func(error) bool
	// OnRetry fires before each backoff wait with the causing error and the
	// 1-based attempt index that just failed.
	OnRetry func(err error, attempt int)
}

func (o RetryOptions) withDefaults() RetryOptions {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 3
	}
	if o.InitialDelay <= 0 {
		o.InitialDelay = time.Second
	}
	if o.Multiplier <= 1 {
		o.Multiplier = 2
	}
	if o.MaxDelay <= 0 {
		o.MaxDelay = 30 * time.Second
	}
	return o
}

// Retry invokes op until it succeeds or attempts are exhausted, waiting an
// exponentially growing delay between attempts. The last error is returned
// verbatim so callers can classify it.
func Retry[T any](ctx context.Context, opts RetryOptions, op func(context.Context) (T, error)) (T, error) {
	opts = opts.withDefaults()

	var zero T
	var lastErr error
	delay := opts.InitialDelay

	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if opts.ShouldRetry != nil && !opts.ShouldRetry(err) {
			return zero, err
		}
		if attempt >= opts.MaxAttempts {
			break
		}
		if opts.OnRetry != nil {
			opts.OnRetry(err, attempt)
		}
		retriesTotal.Inc()

		if sleepErr := sleepFor(ctx, delay); sleepErr != nil {
			return zero, sleepErr
		}
		delay = time.Duration(float64(delay) * opts.Multiplier)
		if delay > opts.MaxDelay {
			delay = opts.MaxDelay
		}
	}
	return zero, lastErr
}

func sleepFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
