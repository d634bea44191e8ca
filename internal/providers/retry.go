package providers

import (
	"context"
	"errors"
	"time"
)

// backoffBase is the first retry delay; it doubles on each attempt.
var backoffBase = time.Second

func retryWithBackoff(ctx context.Context, maxRetries int, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		var apiErr *APIError
		if !errors.As(lastErr, &apiErr) || !apiErr.Retryable() {
			return lastErr
		}

		if attempt < maxRetries {
			backoff := backoffBase * time.Duration(1<<uint(attempt))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}
	}
	return lastErr
}
