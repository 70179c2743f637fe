package resilience

import (
	"errors"
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

// counts resets on every state change.
type counts struct {
	failures  int
	probes    int
	successes int
}

// CircuitBreaker guards an upstream dependency. Methods are safe on a nil
// receiver, which behaves as a permanently closed breaker.
type CircuitBreaker struct {
	mu sync.Mutex

	failureThreshold int
	openTimeout      time.Duration
	probeLimit       int

	state    CircuitState
	counts   counts
	openedAt time.Time
	rejected int64
	now      func() time.Time
}

// Snapshot is a point-in-time view of a breaker for health reporting.
type Snapshot struct {
	State               CircuitState `json:"state"`
	ConsecutiveFailures int          `json:"consecutive_failures"`
	OpenedAt            *time.Time   `json:"opened_at,omitempty"`
	Rejected            int64        `json:"rejected"`
}

func NewCircuitBreaker(failureThreshold int, openTimeout time.Duration, halfOpenMaxReq int) *CircuitBreaker {
	cfg := NormalizeCircuitBreakerConfig(CircuitBreakerConfig{
		FailureThreshold: failureThreshold,
		OpenTimeout:      openTimeout,
		HalfOpenMaxReq:   halfOpenMaxReq,
	})
	return &CircuitBreaker{
		failureThreshold: cfg.FailureThreshold,
		openTimeout:      cfg.OpenTimeout,
		probeLimit:       cfg.HalfOpenMaxReq,
		state:            CircuitStateClosed,
		now:              time.Now,
	}
}

// Execute runs fn when the breaker admits it and records the outcome.
// isFailure decides which errors count against the dependency; nil counts all.
func (b *CircuitBreaker) Execute(fn func() error, isFailure func(error) bool) error {
	if err := b.Allow(); err != nil {
		return err
	}
	err := fn()
	if err != nil && (isFailure == nil || isFailure(err)) {
		b.RecordFailure()
	} else {
		b.RecordSuccess()
	}
	return err
}

// Allow admits a call or returns ErrCircuitOpen. In half-open state each
// admitted call takes one probe slot until RecordSuccess or RecordFailure.
func (b *CircuitBreaker) Allow() error {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.currentState(b.now()) {
	case CircuitStateOpen:
		b.rejected++
		return ErrCircuitOpen
	case CircuitStateHalfOpen:
		if b.counts.probes >= b.probeLimit {
			b.rejected++
			return ErrCircuitOpen
		}
		b.counts.probes++
	}
	return nil
}

func (b *CircuitBreaker) RecordSuccess() {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.currentState(b.now()) {
	case CircuitStateClosed:
		b.counts.failures = 0
	case CircuitStateHalfOpen:
		b.counts.probes = max(b.counts.probes-1, 0)
		b.counts.successes++
		if b.counts.successes >= b.probeLimit && b.counts.probes == 0 {
			b.transition(CircuitStateClosed)
		}
	}
}

func (b *CircuitBreaker) RecordFailure() {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.currentState(b.now()) {
	case CircuitStateClosed:
		b.counts.failures++
		if b.counts.failures >= b.failureThreshold {
			b.transition(CircuitStateOpen)
		}
	default:
		b.transition(CircuitStateOpen)
	}
}

func (b *CircuitBreaker) State() CircuitState {
	return b.Snapshot().State
}

func (b *CircuitBreaker) Snapshot() Snapshot {
	if b == nil {
		return Snapshot{State: CircuitStateClosed}
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	out := Snapshot{
		State:               b.currentState(b.now()),
		ConsecutiveFailures: b.counts.failures,
		Rejected:            b.rejected,
	}
	if !b.openedAt.IsZero() {
		openedAt := b.openedAt
		out.OpenedAt = &openedAt
	}
	return out
}

// currentState moves an expired open breaker to half-open. Callers hold mu.
func (b *CircuitBreaker) currentState(now time.Time) CircuitState {
	if b.state == CircuitStateOpen && now.Sub(b.openedAt) >= b.openTimeout {
		b.transition(CircuitStateHalfOpen)
	}
	return b.state
}

// transition switches state and clears counts. Callers hold mu.
func (b *CircuitBreaker) transition(state CircuitState) {
	failures := b.counts.failures
	b.state = state
	b.counts = counts{}
	switch state {
	case CircuitStateOpen:
		b.openedAt = b.now()
		b.counts.failures = failures
	case CircuitStateClosed:
		b.openedAt = time.Time{}
	}
}
