package currency

import (
	"sync"
	"time"
)

// Breaker defaults for the currency cache
const (
	DefaultBreakerFailures = 3
	DefaultBreakerCooldown = time.Minute
)

type breakerState int

const (
	breakerClosed breakerState = iota
	breakerOpen
)

// CircuitBreaker stops the service from calling a failing cache on every
// request. After maxFailures consecutive failures it opens, and the cache is
// skipped until cooldown has passed; the next call then probes it again.
type CircuitBreaker struct {
	maxFailures int
	cooldown    time.Duration
	now         func() time.Time

	mu          sync.Mutex
	failures    int
	lastFailure time.Time
	state       breakerState
}

// NewCircuitBreaker creates a closed circuit breaker
func NewCircuitBreaker(maxFailures int, cooldown time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		maxFailures: maxFailures,
		cooldown:    cooldown,
		now:         time.Now,
	}
}

// CanAttempt reports whether the guarded call may be made
func (cb *CircuitBreaker) CanAttempt() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == breakerClosed {
		return true
	}
	return cb.now().Sub(cb.lastFailure) > cb.cooldown
}

// RecordSuccess closes the breaker
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures = 0
	cb.state = breakerClosed
}

// RecordFailure counts a failure and reports whether it opened the breaker
func (cb *CircuitBreaker) RecordFailure() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures++
	cb.lastFailure = cb.now()
	if cb.failures >= cb.maxFailures && cb.state == breakerClosed {
		cb.state = breakerOpen
		return true
	}
	return false
}
