package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned while the breaker is rejecting calls.
var ErrOpen = errors.New("circuit breaker is open")

type state int

const (
	closed state = iota
	open
	halfOpen
)

type Settings struct {
	Name string
	// MaxRequests is the consecutive-failure count that trips the
	// breaker.
	MaxRequests int
	Interval    time.Duration
	// Timeout is how long the breaker stays open before probing.
	Timeout time.Duration
}

// CircuitBreaker sheds load from a failing dependency. After
// MaxRequests consecutive failures it rejects calls for Timeout, then
// lets one probe through; a successful probe closes it again.
type CircuitBreaker struct {
	settings Settings

	mu          sync.Mutex
	state       state
	failures    int
	lastFailure time.Time
}

func NewCircuitBreaker(settings Settings) *CircuitBreaker {
	return &CircuitBreaker{settings: settings}
}

func (cb *CircuitBreaker) Execute(fn func() error) error {
	cb.mu.Lock()
	if cb.state == open {
		if time.Since(cb.lastFailure) <= cb.settings.Timeout {
			cb.mu.Unlock()
			return ErrOpen
		}
		cb.state = halfOpen
	}
	cb.mu.Unlock()

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err != nil {
		cb.failures++
		cb.lastFailure = time.Now()
		if cb.state == halfOpen || cb.failures >= cb.settings.MaxRequests {
			cb.state = open
		}
		return err
	}

	cb.state = closed
	cb.failures = 0
	return nil
}
