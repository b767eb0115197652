package resilience

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

var errUpstream = errors.New("upstream down")

func failing(context.Context) error { return errUpstream }
func passing(context.Context) error { return nil }

func newTestBreaker(cfg CircuitBreakerConfig) (*CircuitBreaker, *time.Time) {
	cfg.Enabled = true
	b := NewCircuitBreaker(cfg)
	now := time.Date(2026, 2, 14, 19, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }
	return b, &now
}

func TestCircuitBreaker_OpensAndRecovers(t *testing.T) {
	b, now := newTestBreaker(CircuitBreakerConfig{FailureThreshold: 2, OpenTimeout: 5 * time.Second, HalfOpenMaxReq: 1})
	ctx := context.Background()

	_ = b.Do(ctx, failing, nil)
	if state := b.current(); state != CircuitStateClosed {
		t.Fatalf("expected closed after first failure, got %s", state)
	}
	_ = b.Do(ctx, failing, nil)
	if state := b.current(); state != CircuitStateOpen {
		t.Fatalf("expected open after threshold failures, got %s", state)
	}

	err := b.Do(ctx, passing, nil)
	if !errors.Is(err, ErrCircuitOpen) || !strings.Contains(err.Error(), "retry in 5s") {
		t.Fatalf("expected open error with retry hint, got %v", err)
	}

	*now = now.Add(6 * time.Second)
	if state := b.current(); state != CircuitStateHalfOpen {
		t.Fatalf("expected half-open after timeout, got %s", state)
	}
	if err := b.Do(ctx, passing, nil); err != nil {
		t.Fatalf("expected trial call to pass, got %v", err)
	}
	if state := b.current(); state != CircuitStateClosed {
		t.Fatalf("expected closed after successful trial, got %s", state)
	}
}

func TestCircuitBreaker_FailedTrialReopens(t *testing.T) {
	b, now := newTestBreaker(CircuitBreakerConfig{FailureThreshold: 1, OpenTimeout: time.Second, HalfOpenMaxReq: 2})
	ctx := context.Background()

	_ = b.Do(ctx, failing, nil)
	*now = now.Add(2 * time.Second)

	if err := b.Do(ctx, failing, nil); !errors.Is(err, errUpstream) {
		t.Fatalf("expected trial to reach upstream, got %v", err)
	}
	if state := b.current(); state != CircuitStateOpen {
		t.Fatalf("expected failed trial to reopen, got %s", state)
	}
}

func TestCircuitBreaker_LimitsTrialsInFlight(t *testing.T) {
	b, now := newTestBreaker(CircuitBreakerConfig{FailureThreshold: 1, OpenTimeout: time.Second, HalfOpenMaxReq: 1})
	ctx := context.Background()

	_ = b.Do(ctx, failing, nil)
	*now = now.Add(2 * time.Second)

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- b.Do(ctx, func(context.Context) error {
			close(started)
			<-release
			return nil
		}, nil)
	}()
	<-started

	if err := b.Do(ctx, passing, nil); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected second trial to be refused, got %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("trial call: %v", err)
	}
	if state := b.current(); state != CircuitStateClosed {
		t.Fatalf("expected closed after trial, got %s", state)
	}
}

func TestCircuitBreaker_DoSkipsCallerErrors(t *testing.T) {
	b, _ := newTestBreaker(CircuitBreakerConfig{FailureThreshold: 1})
	notFound := errors.New("not found")
	isFailure := func(err error) bool { return !errors.Is(err, notFound) }

	if err := b.Do(context.Background(), func(context.Context) error { return notFound }, isFailure); !errors.Is(err, notFound) {
		t.Fatalf("expected passthrough error, got %v", err)
	}
	if state := b.current(); state != CircuitStateClosed {
		t.Fatalf("caller error must not open the breaker, got %s", state)
	}

	_ = b.Do(context.Background(), failing, isFailure)
	called := false
	err := b.Do(context.Background(), func(context.Context) error { called = true; return nil }, isFailure)
	if !errors.Is(err, ErrCircuitOpen) || called {
		t.Fatalf("expected short-circuit, got err=%v called=%v", err, called)
	}
}

func TestCircuitBreaker_DisabledIsNil(t *testing.T) {
	b := NewCircuitBreaker(CircuitBreakerConfig{Enabled: false})
	if b != nil {
		t.Fatalf("expected nil breaker when disabled")
	}
	if err := b.Do(context.Background(), passing, nil); err != nil {
		t.Fatalf("nil breaker should pass through: %v", err)
	}
}

func TestCircuitBreakerConfig_Validate(t *testing.T) {
	valid := CircuitBreakerConfig{Enabled: true, FailureThreshold: 3, OpenTimeout: time.Second, HalfOpenMaxReq: 1}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := (CircuitBreakerConfig{}).Validate(); err != nil {
		t.Fatalf("disabled config must validate: %v", err)
	}

	broken := []CircuitBreakerConfig{
		{Enabled: true, FailureThreshold: 0, OpenTimeout: time.Second, HalfOpenMaxReq: 1},
		{Enabled: true, FailureThreshold: 1, OpenTimeout: 0, HalfOpenMaxReq: 1},
		{Enabled: true, FailureThreshold: 1, OpenTimeout: time.Second, HalfOpenMaxReq: 0},
	}
	for _, cfg := range broken {
		if err := cfg.Validate(); err == nil {
			t.Fatalf("expected error for %+v", cfg)
		}
	}

	filled := CircuitBreakerConfig{Enabled: true}.withDefaults()
	if filled.FailureThreshold != defaultFailureThreshold || filled.OpenTimeout != defaultOpenTimeout || filled.HalfOpenMaxReq != defaultHalfOpenMaxReq {
		t.Fatalf("unexpected defaults: %+v", filled)
	}
}
