// Package modelclient provides the shared resilience primitives (circuit
// breaker, error classification) used by every external model call: the
// vector producer's embedding calls and the adaptive reranker's pairwise
// scorer calls.
package modelclient

import (
	"sync"
	"time"
)

// CircuitState represents the state of a circuit breaker.
type CircuitState string

const (
	CircuitStateClosed   CircuitState = "closed"
	CircuitStateOpen     CircuitState = "open"
	CircuitStateHalfOpen CircuitState = "half_open"
)

// CircuitBreakerConfig configures a CircuitBreaker.
type CircuitBreakerConfig struct {
	FailureThreshold int           // consecutive failures before opening
	ResetTimeout     time.Duration // initial cooldown before transitioning to half-open
	HalfOpenMax      int           // max probe requests allowed in half-open
}

// DefaultCircuitBreakerConfig returns sensible defaults.
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		FailureThreshold: 5,
		ResetTimeout:     30 * time.Second,
		HalfOpenMax:      1,
	}
}

// CircuitBreaker protects a single external dependency (one embedding
// model, one reranker scorer) from being hammered while it is failing, with
// exponential backoff on repeated re-opens.
type CircuitBreaker struct {
	mu              sync.Mutex
	config          CircuitBreakerConfig
	state           CircuitState
	failures        int
	lastFailureAt   time.Time
	halfOpenCount   int
	consecutiveOpen int
}

// NewCircuitBreaker creates a new circuit breaker in closed state.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{
		config: cfg,
		state:  CircuitStateClosed,
	}
}

// GetExponentialBackoffDuration calculates the backoff duration with
// exponential growth. Each consecutive re-open doubles the wait time,
// capped at 5 minutes.
func (cb *CircuitBreaker) GetExponentialBackoffDuration() time.Duration {
	base := cb.config.ResetTimeout
	multiplier := 1 << uint(cb.consecutiveOpen)
	backoff := time.Duration(multiplier) * base
	const maxBackoff = 5 * time.Minute
	if backoff > maxBackoff {
		backoff = maxBackoff
	}
	return backoff
}

// State returns the current circuit breaker state, transitioning
// Open -> HalfOpen automatically once the exponential backoff has elapsed.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.checkAndTransition()
	return cb.state
}

func (cb *CircuitBreaker) checkAndTransition() {
	if cb.state == CircuitStateOpen && time.Since(cb.lastFailureAt) > cb.GetExponentialBackoffDuration() {
		cb.state = CircuitStateHalfOpen
		cb.halfOpenCount = 0
	}
}

// Allow returns true if a request should be allowed through.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.checkAndTransition()

	switch cb.state {
	case CircuitStateClosed:
		return true
	case CircuitStateOpen:
		return false
	case CircuitStateHalfOpen:
		if cb.halfOpenCount < cb.config.HalfOpenMax {
			cb.halfOpenCount++
			return true
		}
		return false
	}
	return false
}

// RecordSuccess records a successful call. Transitions HalfOpen -> Closed
// and resets all failure counters.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failures = 0
	cb.consecutiveOpen = 0
	cb.state = CircuitStateClosed
	cb.halfOpenCount = 0
}

// RecordFailure records a failed call. May transition Closed -> Open or
// HalfOpen -> Open.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failures++
	cb.lastFailureAt = time.Now()
	if cb.state == CircuitStateHalfOpen {
		cb.state = CircuitStateOpen
		cb.consecutiveOpen++
		return
	}
	if cb.failures >= cb.config.FailureThreshold {
		cb.state = CircuitStateOpen
	}
}
