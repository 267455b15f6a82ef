package marketdata

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	retryInitialInterval = 200 * time.Millisecond
	retryMaxInterval     = 2 * time.Second
)

// retry runs op once, then up to maxRetries more times with exponential backoff
// while it keeps failing with a retryable error. Errors wrapped in
// backoff.Permanent stop immediately and are returned unwrapped.
func retry(ctx context.Context, maxRetries int, op func() error) error {
	if maxRetries <= 0 {
		err := op()
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			return perm.Err
		}
		return err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = retryInitialInterval
	b.MaxInterval = retryMaxInterval
	b.MaxElapsedTime = 0 // bounded by the retry count and ctx instead

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(maxRetries)), ctx)
	return backoff.Retry(op, policy)
}
