// Package guard protects outbound calls with a per-key circuit breaker.
package guard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrCircuitOpen is returned while a key's circuit rejects calls.
var ErrCircuitOpen = errors.New("circuit open")

// CircuitState represents the state of a circuit breaker.
type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// CircuitBreaker keeps one circuit per key. A circuit opens after
// failThreshold consecutive failures, lets a probe through once cooldown has
// passed, and closes again on the first successful probe.
type CircuitBreaker struct {
	mu            sync.Mutex
	circuits      map[string]*circuit
	failThreshold int
	cooldown      time.Duration
	now           func() time.Time
}

type circuit struct {
	state       CircuitState
	failures    int
	lastFailure time.Time
}

// NewCircuitBreaker creates a circuit breaker with configurable thresholds.
func NewCircuitBreaker(failThreshold int, cooldown time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		circuits:      make(map[string]*circuit),
		failThreshold: max(1, failThreshold),
		cooldown:      cooldown,
		now:           time.Now,
	}
}

func (cb *CircuitBreaker) get(key string) *circuit {
	c, ok := cb.circuits[key]
	if !ok {
		c = &circuit{state: CircuitClosed}
		cb.circuits[key] = c
	}
	return c
}

// Allow reports whether a call for key may proceed. It wraps ErrCircuitOpen
// when it may not.
func (cb *CircuitBreaker) Allow(key string) error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	c := cb.get(key)
	if c.state != CircuitOpen {
		return nil
	}
	wait := cb.cooldown - cb.now().Sub(c.lastFailure)
	if wait <= 0 {
		c.state = CircuitHalfOpen
		return nil
	}
	return fmt.Errorf("%w for %s, retry in %s", ErrCircuitOpen, key, wait.Round(time.Millisecond))
}

// RecordSuccess closes the circuit for key.
func (cb *CircuitBreaker) RecordSuccess(key string) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	c := cb.get(key)
	c.state = CircuitClosed
	c.failures = 0
}

// RecordFailure counts a failed call for key. A failed half-open probe
// reopens the circuit at once.
func (cb *CircuitBreaker) RecordFailure(key string) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	c := cb.get(key)
	c.failures++
	c.lastFailure = cb.now()
	if c.state == CircuitHalfOpen || c.failures >= cb.failThreshold {
		c.state = CircuitOpen
	}
}

// State returns the current state of key's circuit.
func (cb *CircuitBreaker) State(key string) CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.get(key).state
}

// Publisher sends one message to a broker topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// BreakerPublisher guards a Publisher with one circuit per topic.
type BreakerPublisher struct {
	next    Publisher
	breaker *CircuitBreaker
}

// NewBreakerPublisher wraps next.
func NewBreakerPublisher(next Publisher, breaker *CircuitBreaker) *BreakerPublisher {
	return &BreakerPublisher{next: next, breaker: breaker}
}

func (p *BreakerPublisher) Publish(ctx context.Context, topic string, key, value []byte) error {
	if err := p.breaker.Allow(topic); err != nil {
		return err
	}
	if err := p.next.Publish(ctx, topic, key, value); err != nil {
		// a cancelled relay is not a broker failure
		if ctx.Err() == nil {
			p.breaker.RecordFailure(topic)
		}
		return err
	}
	p.breaker.RecordSuccess(topic)
	return nil
}
