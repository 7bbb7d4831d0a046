package providers

import (
	"context"
	"time"
)

// defaultMaxRetries bounds analysis attempts per chunk.
const defaultMaxRetries = 3

// sleepFunc suspends for d or until ctx is done. Injectable so tests can
// run retries without real delays.
type sleepFunc func(ctx context.Context, d time.Duration) error

func sleepWithContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// retryWithBackoff runs fn up to maxRetries times, sleeping 2^attempt
// seconds between attempts. Config errors abort immediately; any other
// error is treated as transient. The last error is returned when all
// attempts fail.
func retryWithBackoff(ctx context.Context, maxRetries int, sleep sleepFunc, fn func() error) error {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	if sleep == nil {
		sleep = sleepWithContext
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if IsConfigError(lastErr) {
			return lastErr
		}
		if attempt < maxRetries-1 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			if err := sleep(ctx, backoff); err != nil {
				return err
			}
		}
	}
	return lastErr
}
