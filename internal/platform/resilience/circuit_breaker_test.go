package resilience

import (
	"errors"
	"testing"
	"time"
)

func TestCircuitBreaker_BasicTransitions(t *testing.T) {
	b := NewCircuitBreaker(2, 5*time.Second, 1)

	now := time.Date(2026, 2, 11, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }

	if err := b.Allow(); err != nil {
		t.Fatalf("expected allow in closed state: %v", err)
	}

	b.RecordFailure()
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after first failure, got %s", state)
	}

	b.RecordFailure()
	if state := b.State(); state != CircuitStateOpen {
		t.Fatalf("expected open after threshold failures, got %s", state)
	}

	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected circuit open error, got %v", err)
	}
	if snap := b.Snapshot(); snap.Rejected != 1 || snap.OpenedAt == nil {
		t.Fatalf("unexpected snapshot while open: %+v", snap)
	}

	now = now.Add(6 * time.Second)
	if err := b.Allow(); err != nil {
		t.Fatalf("expected half-open probe to pass, got %v", err)
	}
	if state := b.State(); state != CircuitStateHalfOpen {
		t.Fatalf("expected half-open state, got %s", state)
	}
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected second half-open probe to be rejected, got %v", err)
	}

	b.RecordSuccess()
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after successful half-open probe, got %s", state)
	}
}

func TestCircuitBreaker_ExecuteClassifiesFailures(t *testing.T) {
	b := NewCircuitBreaker(1, time.Minute, 1)
	errIgnored := errors.New("not found")
	errCounted := errors.New("upstream 503")
	isFailure := func(err error) bool { return errors.Is(err, errCounted) }

	if err := b.Execute(func() error { return errIgnored }, isFailure); !errors.Is(err, errIgnored) {
		t.Fatalf("expected passthrough error, got %v", err)
	}
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("ignored error must not trip the breaker, got %s", state)
	}

	if err := b.Execute(func() error { return errCounted }, isFailure); !errors.Is(err, errCounted) {
		t.Fatalf("expected counted error, got %v", err)
	}
	called := false
	err := b.Execute(func() error {
		called = true
		return nil
	}, isFailure)
	if !errors.Is(err, ErrCircuitOpen) || called {
		t.Fatalf("expected open breaker to short-circuit: err=%v called=%v", err, called)
	}
}

func TestCircuitBreaker_NilAdmitsEverything(t *testing.T) {
	var b *CircuitBreaker
	if NewCircuitBreakerFromConfig(CircuitBreakerConfig{Enabled: false}) != nil {
		t.Fatalf("expected nil breaker when disabled")
	}
	if err := b.Allow(); err != nil {
		t.Fatalf("nil breaker must allow: %v", err)
	}
	b.RecordFailure()
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("nil breaker state: got=%s want=%s", state, CircuitStateClosed)
	}
}

func TestCircuitBreaker_FailedProbeReopens(t *testing.T) {
	b := NewCircuitBreaker(1, time.Second, 1)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }

	b.RecordFailure()
	now = now.Add(2 * time.Second)
	if err := b.Allow(); err != nil {
		t.Fatalf("expected half-open probe, got %v", err)
	}
	b.RecordFailure()

	snap := b.Snapshot()
	if snap.State != CircuitStateOpen || snap.OpenedAt == nil || !snap.OpenedAt.Equal(now) {
		t.Fatalf("expected breaker to reopen at probe time: %+v", snap)
	}
}

func TestNewCircuitBreaker_NormalizesArguments(t *testing.T) {
	b := NewCircuitBreaker(0, 0, 0)
	if b.failureThreshold != 5 || b.openTimeout != 30*time.Second || b.probeLimit != 1 {
		t.Fatalf("unexpected defaults: threshold=%d timeout=%s probes=%d", b.failureThreshold, b.openTimeout, b.probeLimit)
	}
}
