package breaker

import (
	"context"
	"sync"
	"time"

	"github.com/flowsend/aegis/internal/core/errs"
	"github.com/flowsend/aegis/internal/metrics"
)

// State represents the breaker position.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// Settings configures a breaker for one guarded service.
type Settings struct {
	Threshold    int
	ResetTimeout time.Duration
}

// Per-service presets. Database trips fastest because sustained DB failure is
// the most severe signal.
var (
	ProviderAPISettings = Settings{Threshold: 10, ResetTimeout: 120 * time.Second}
	AISettings          = Settings{Threshold: 5, ResetTimeout: 60 * time.Second}
	DatabaseSettings    = Settings{Threshold: 3, ResetTimeout: 30 * time.Second}
)

// Breaker is a per-service circuit breaker. One instance per guarded service,
// created at process start and mutated by every guarded call. Safe for
// concurrent use.
type Breaker struct {
	name     string
	settings Settings

	mu              sync.Mutex
	state           State
	failureCount    int
	lastFailureTime time.Time
	trialInFlight   bool
}

// New creates a breaker in the closed state.
func New(name string, settings Settings) *Breaker {
	b := &Breaker{name: name, settings: settings}
	metrics.BreakerState.WithLabelValues(name).Set(float64(StateClosed))
	return b
}

// Name returns the guarded service name.
func (b *Breaker) Name() string {
	return b.name
}

// State returns the current state. Pure read for observability.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Execute runs work through the breaker. While open it fails fast with a
// SYS_CIRCUIT_OPEN error so callers can tell "service is down" apart from
// "this call failed". In half-open exactly one trial call is admitted;
// concurrent callers are rejected as if still open.
func (b *Breaker) Execute(ctx context.Context, work func(ctx context.Context) (any, error)) (any, error) {
	trial, err := b.admit()
	if err != nil {
		metrics.BreakerRejectedTotal.WithLabelValues(b.name).Inc()
		return nil, err
	}

	result, workErr := work(ctx)
	b.settle(trial, workErr == nil)

	if workErr != nil {
		return nil, workErr
	}
	return result, nil
}

// admit decides whether the call may proceed. Returns whether this call holds
// the half-open trial reservation.
func (b *Breaker) admit() (trial bool, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateOpen:
		if time.Since(b.lastFailureTime) <= b.settings.ResetTimeout {
			return false, errs.New(errs.CodeSysCircuitOpen).WithDetail("service", b.name)
		}
		b.transition(StateHalfOpen)
		b.trialInFlight = true
		return true, nil

	case StateHalfOpen:
		if b.trialInFlight {
			return false, errs.New(errs.CodeSysCircuitOpen).WithDetail("service", b.name)
		}
		b.trialInFlight = true
		return true, nil

	default:
		return false, nil
	}
}

// settle records the outcome of an admitted call.
func (b *Breaker) settle(trial, success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if trial {
		b.trialInFlight = false
	}

	if success {
		b.failureCount = 0
		if b.state != StateClosed {
			b.transition(StateClosed)
		}
		return
	}

	b.lastFailureTime = time.Now()

	if b.state == StateHalfOpen {
		b.transition(StateOpen)
		return
	}

	b.failureCount++
	if b.state == StateClosed && b.failureCount >= b.settings.Threshold {
		b.transition(StateOpen)
	}
}

// Reset forces the breaker back to closed. Operator escape hatch.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failureCount = 0
	b.trialInFlight = false
	if b.state != StateClosed {
		b.transition(StateClosed)
	}
}

// transition must be called with the lock held.
func (b *Breaker) transition(to State) {
	b.state = to
	metrics.BreakerState.WithLabelValues(b.name).Set(float64(to))
	metrics.BreakerTransitionsTotal.WithLabelValues(b.name, to.String()).Inc()
}
