package service

import (
	"errors"
	"sync"
	"time"
)

// Circuit breaker configuration.
const (
	cbFailureThreshold = 5
	cbCooldown         = 30 * time.Second
)

// Circuit breaker states.
const (
	cbClosed   = iota // Normal operation.
	cbOpen            // Fail fast.
	cbHalfOpen        // Probe with one request.
)

// ErrCircuitOpen is returned when the circuit breaker is open and requests
// are being rejected without calling the model service.
var ErrCircuitOpen = errors.New("model service circuit breaker is open")

// breaker is a minimal circuit breaker shared by the Ollama-backed
// services. It fails fast while the model server is down instead of
// stalling every pipeline stage on a 30 second timeout.
type breaker struct {
	mu            sync.Mutex
	state         int
	failures      int
	lastFailureAt time.Time
}

// allow checks whether the breaker permits a request. In closed state all
// requests pass. In open state requests are rejected until the cooldown
// expires, at which point we transition to half-open. In half-open state
// one probe request is allowed.
func (b *breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case cbClosed:
		return nil
	case cbOpen:
		if time.Since(b.lastFailureAt) >= cbCooldown {
			b.state = cbHalfOpen

			return nil
		}

		return ErrCircuitOpen
	case cbHalfOpen:
		// Already probing — reject additional requests.
		return ErrCircuitOpen
	}

	return nil
}

// recordSuccess records a successful call. In half-open state this closes
// the breaker, restoring normal operation.
func (b *breaker) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures = 0
	b.state = cbClosed
}

// recordFailure records a failed call. After reaching the failure
// threshold the breaker transitions to open state.
func (b *breaker) recordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	b.lastFailureAt = time.Now()

	if b.failures >= cbFailureThreshold || b.state == cbHalfOpen {
		b.state = cbOpen
	}
}
