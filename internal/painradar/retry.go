package painradar

import (
	"context"
	"time"
)

const (
	defaultAttempts = 3
	defaultBackoff  = time.Second
)

// WithRetry calls fn up to attempts times, doubling the delay after each
// retryable failure.
func WithRetry[T any](ctx context.Context, attempts int, base time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var (
		zero    T
		lastErr error
	)
	for i := range attempts {
		out, err := fn(ctx)
		if err == nil {
			return out, nil
		}
		if !IsRetryable(err) {
			return zero, err
		}
		lastErr = err
		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(base << i):
			}
		}
	}
	return zero, lastErr
}
