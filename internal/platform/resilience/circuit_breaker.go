package resilience

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitState string

const (
	CircuitStateClosed   CircuitState = "closed"
	CircuitStateOpen     CircuitState = "open"
	CircuitStateHalfOpen CircuitState = "half_open"
)

// CircuitBreaker sheds calls to an upstream after a run of failures and
// lets a bounded number of trial calls through once the open timeout has
// passed. A nil *CircuitBreaker allows every call.
type CircuitBreaker struct {
	mu  sync.Mutex
	cfg CircuitBreakerConfig
	now func() time.Time

	state    CircuitState
	failures int
	openedAt time.Time
	// trial bookkeeping while half-open
	inFlight  int
	succeeded int
}

// NewCircuitBreaker returns nil when cfg is disabled.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	if !cfg.Enabled {
		return nil
	}
	return &CircuitBreaker{
		cfg:   cfg.withDefaults(),
		now:   time.Now,
		state: CircuitStateClosed,
	}
}

// Do runs fn unless the breaker is open. isFailure picks the errors that
// count against the upstream, so a 4xx caused by our own request leaves
// the breaker alone. A nil isFailure counts every error.
func (b *CircuitBreaker) Do(ctx context.Context, fn func(context.Context) error, isFailure func(error) bool) error {
	if b == nil {
		return fn(ctx)
	}
	trial, err := b.admit()
	if err != nil {
		return err
	}

	err = fn(ctx)
	b.settle(trial, err != nil && (isFailure == nil || isFailure(err)))
	return err
}

// admit reports whether the call is a half-open trial.
func (b *CircuitBreaker) admit() (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitStateOpen {
		wait := b.cfg.OpenTimeout - b.now().Sub(b.openedAt)
		if wait > 0 {
			return false, fmt.Errorf("%w: retry in %s", ErrCircuitOpen, wait.Round(time.Millisecond))
		}
		b.state = CircuitStateHalfOpen
		b.inFlight, b.succeeded = 0, 0
	}
	if b.state == CircuitStateClosed {
		return false, nil
	}
	if b.inFlight >= b.cfg.HalfOpenMaxReq {
		return false, fmt.Errorf("%w: %d trial calls already in flight", ErrCircuitOpen, b.inFlight)
	}
	b.inFlight++
	return true, nil
}

func (b *CircuitBreaker) settle(trial, failed bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if trial && b.inFlight > 0 {
		b.inFlight--
	}
	switch b.state {
	case CircuitStateOpen:
		// a call admitted before the trip failed late
		if failed {
			b.openedAt = b.now()
		}
	case CircuitStateHalfOpen:
		if failed {
			b.trip()
			return
		}
		if trial {
			b.succeeded++
		}
		if b.succeeded >= b.cfg.HalfOpenMaxReq && b.inFlight == 0 {
			b.state = CircuitStateClosed
			b.failures = 0
		}
	default:
		if !failed {
			b.failures = 0
			return
		}
		b.failures++
		if b.failures >= b.cfg.FailureThreshold {
			b.trip()
		}
	}
}

func (b *CircuitBreaker) trip() {
	b.state = CircuitStateOpen
	b.openedAt = b.now()
	b.failures = 0
	b.inFlight, b.succeeded = 0, 0
}

// current reports the state a call made now would see.
func (b *CircuitBreaker) current() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitStateOpen && b.now().Sub(b.openedAt) >= b.cfg.OpenTimeout {
		return CircuitStateHalfOpen
	}
	return b.state
}
