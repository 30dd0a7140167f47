package resilience

import (
	"sync"
	"time"
)

// CircuitState is the state of a Breaker.
type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Breaker is a minimal circuit breaker. After FailureThreshold consecutive
// failures it opens for ResetTimeout; a single probe is then allowed through
// and a success closes it again. The search chain uses it to stop hammering
// a provider that is consistently failing.
type Breaker struct {
	FailureThreshold int
	ResetTimeout     time.Duration

	mu       sync.Mutex
	state    CircuitState
	failures int
	openedAt time.Time
	now      func() time.Time
}

// NewBreaker creates a Breaker with the given threshold and reset timeout.
func NewBreaker(threshold int, reset time.Duration) *Breaker {
	if threshold <= 0 {
		threshold = 5
	}
	if reset <= 0 {
		reset = 30 * time.Second
	}
	return &Breaker{
		FailureThreshold: threshold,
		ResetTimeout:     reset,
		now:              time.Now,
	}
}

// Allow reports whether a call may proceed. In the open state it permits one
// probe once ResetTimeout has elapsed.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitClosed, CircuitHalfOpen:
		return true
	case CircuitOpen:
		if b.now().Sub(b.openedAt) >= b.ResetTimeout {
			b.state = CircuitHalfOpen
			return true
		}
		return false
	}
	return true
}

// RecordSuccess closes the circuit and clears the failure count.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = CircuitClosed
	b.failures = 0
}

// RecordFailure counts a failure and opens the circuit at the threshold.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	if b.state == CircuitHalfOpen || b.failures >= b.FailureThreshold {
		b.state = CircuitOpen
		b.openedAt = b.now()
		b.failures = 0
	}
}

// State returns the current circuit state.
func (b *Breaker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
