package modelclient

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrUnavailable   = errors.New("model_unavailable")    // network, 5xx, timeout
	ErrRateLimited   = errors.New("model_rate_limited")   // 429
	ErrInvalidOutput = errors.New("model_invalid_output") // embedding dimension mismatch, malformed score
)

// ModelError wraps a model-provider error with additional context.
type ModelError struct {
	Err        error
	Message    string
	RetryAfter int // seconds, for rate limiting
}

func (e *ModelError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%v: %s", e.Err, e.Message)
	}
	return e.Err.Error()
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// ErrorCategory classifies errors for retry/escalation decisions.
type ErrorCategory string

const (
	ErrorCategoryTransient ErrorCategory = "transient" // retry with backoff
	ErrorCategoryPermanent ErrorCategory = "permanent" // fail fast, don't retry
)

// ClassifiedError wraps an error with classification metadata.
type ClassifiedError struct {
	Original    error
	Category    ErrorCategory
	ShouldRetry bool
	StatusCode  int
	Message     string
}

func (e *ClassifiedError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Category, e.Message, e.Original)
}

func (e *ClassifiedError) Unwrap() error {
	return e.Original
}

// ClassifyError categorizes a model-provider error into transient/permanent
// so the caller (vector producer, reranker scorer) knows whether to retry.
func ClassifyError(statusCode int, err error) *ClassifiedError {
	switch {
	case errors.Is(err, ErrInvalidOutput):
		return &ClassifiedError{Original: err, Category: ErrorCategoryPermanent, ShouldRetry: false, StatusCode: statusCode, Message: "invalid model output"}
	case errors.Is(err, ErrRateLimited):
		return &ClassifiedError{Original: err, Category: ErrorCategoryTransient, ShouldRetry: true, StatusCode: 429, Message: "rate limited"}
	case errors.Is(err, ErrUnavailable):
		return &ClassifiedError{Original: err, Category: ErrorCategoryTransient, ShouldRetry: true, StatusCode: statusCode, Message: "model service unavailable"}
	}

	switch {
	case statusCode == 429:
		return &ClassifiedError{Original: err, Category: ErrorCategoryTransient, ShouldRetry: true, StatusCode: statusCode, Message: "rate limited"}
	case statusCode >= 500:
		return &ClassifiedError{Original: err, Category: ErrorCategoryTransient, ShouldRetry: true, StatusCode: statusCode, Message: "server error"}
	case statusCode == 408 || statusCode == 504:
		return &ClassifiedError{Original: err, Category: ErrorCategoryTransient, ShouldRetry: true, StatusCode: statusCode, Message: "timeout"}
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &ClassifiedError{Original: err, Category: ErrorCategoryTransient, ShouldRetry: true, StatusCode: 0, Message: "timeout or cancelled"}
	}

	if statusCode >= 400 && statusCode < 500 && statusCode != 429 {
		return &ClassifiedError{Original: err, Category: ErrorCategoryPermanent, ShouldRetry: false, StatusCode: statusCode, Message: "client error"}
	}

	return &ClassifiedError{Original: err, Category: ErrorCategoryTransient, ShouldRetry: true, StatusCode: statusCode, Message: "unknown error"}
}
