package modelclient

import (
	"context"
	"math/rand/v2"
	"time"
)

// Call is the signature an external model invocation must satisfy to be
// driven by Retry: it returns an HTTP-ish status code (0 if unknown) and an
// error.
type Call func(ctx context.Context) (statusCode int, err error)

// Retry runs call once and then up to maxRetries more times, honoring the
// circuit breaker and applying exponential backoff with jitter between
// attempts. It returns the last classified error if every attempt failed or
// the breaker refused the call outright.
func Retry(ctx context.Context, cb *CircuitBreaker, baseDelay time.Duration, maxRetries int, call Call) error {
	var lastErr *ClassifiedError

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if !cb.Allow() {
			return &ClassifiedError{Original: ErrUnavailable, Category: ErrorCategoryTransient, ShouldRetry: false, Message: "circuit breaker open"}
		}

		if attempt > 0 {
			delay := backoffWithJitter(baseDelay, attempt)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return &ClassifiedError{Original: ctx.Err(), Category: ErrorCategoryTransient, ShouldRetry: false, Message: "context cancelled during backoff"}
			}
		}

		status, err := call(ctx)
		if err == nil {
			cb.RecordSuccess()
			return nil
		}

		classified := ClassifyError(status, err)
		lastErr = classified
		cb.RecordFailure()

		if !classified.ShouldRetry {
			return classified
		}
	}
	return lastErr
}

func backoffWithJitter(base time.Duration, attempt int) time.Duration {
	d := base * time.Duration(1<<uint(attempt-1))
	jitter := time.Duration(rand.Int64N(int64(d)/4 + 1))
	return d + jitter
}
