package resilience

import (
	"context"
	"sync"
	"time"
)

// State represents the circuit breaker state.
type State int

const (
	// StateClosed means the circuit is operating normally.
	StateClosed State = iota
	// StateOpen means the circuit is rejecting all requests.
	StateOpen
	// StateHalfOpen means the circuit is probing whether the dependency recovered.
	StateHalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig configures the circuit breaker.
type CircuitBreakerConfig struct {
	// FailureThreshold is the number of consecutive failures before opening.
	// Default: 5
	FailureThreshold int

	// ResetTimeout is how long the circuit stays open before probing.
	// Default: 30 seconds
	ResetTimeout time.Duration

	// HalfOpenMaxCalls is the number of probe calls permitted while
	// half-open; the circuit closes after that many successes.
	// Default: 1
	HalfOpenMaxCalls int

	// OnStateChange is called when the circuit state changes.
	OnStateChange func(from, to State)

	// IsFailure determines if an error should count as a failure.
	// Default: all non-nil errors are failures.
	IsFailure func(err error) bool
}

// CircuitBreaker implements the circuit breaker pattern. All mutation on one
// instance is serialized through a single mutex; instances are typically
// shared by name through a Registry.
type CircuitBreaker struct {
	config CircuitBreakerConfig

	mu            sync.Mutex
	state         State
	failures      int
	successes     int
	lastFailure   time.Time
	halfOpenCalls int
	hooks         []func(from, to State)
}

// NewCircuitBreaker creates a new circuit breaker.
func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	// Apply defaults
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = 5
	}
	if config.ResetTimeout <= 0 {
		config.ResetTimeout = 30 * time.Second
	}
	if config.HalfOpenMaxCalls <= 0 {
		config.HalfOpenMaxCalls = 1
	}
	if config.IsFailure == nil {
		config.IsFailure = func(err error) bool { return err != nil }
	}

	return &CircuitBreaker{
		config: config,
		state:  StateClosed,
	}
}

// CanExecute reports whether a call may proceed, consuming a probe permit
// when half-open. An open circuit flips to half-open once ResetTimeout has
// elapsed since the last failure.
func (cb *CircuitBreaker) CanExecute() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.maybeProbeLocked() {
	case StateClosed:
		return true
	case StateOpen:
		return false
	default: // StateHalfOpen
		if cb.halfOpenCalls >= cb.config.HalfOpenMaxCalls {
			return false
		}
		cb.halfOpenCalls++
		return true
	}
}

// RecordSuccess records a successful call. While half-open, the circuit
// closes once HalfOpenMaxCalls successes have accumulated; while closed, the
// failure count resets.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateHalfOpen:
		cb.successes++
		if cb.successes >= cb.config.HalfOpenMaxCalls {
			cb.failures = 0
			cb.successes = 0
			cb.transitionLocked(StateClosed)
		}
	case StateClosed:
		cb.failures = 0
	}
}

// RecordFailure records a failed call. A single half-open failure reopens
// the circuit immediately; reaching FailureThreshold while closed opens it.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures++
	cb.lastFailure = time.Now()

	switch cb.state {
	case StateHalfOpen:
		cb.successes = 0
		cb.transitionLocked(StateOpen)
	case StateClosed:
		if cb.failures >= cb.config.FailureThreshold {
			cb.transitionLocked(StateOpen)
		}
	}
}

// Execute runs the operation through the circuit breaker. When the circuit
// rejects the call, ErrCircuitOpen is returned without invoking op;
// otherwise op's outcome is recorded and its error returned unchanged.
func (cb *CircuitBreaker) Execute(ctx context.Context, op func(context.Context) error) error {
	if !cb.CanExecute() {
		return ErrCircuitOpen
	}

	err := op(ctx)
	if cb.config.IsFailure(err) {
		cb.RecordFailure()
	} else {
		cb.RecordSuccess()
	}
	return err
}

// State returns the current circuit state, applying the open→half-open
// transition if the reset timeout has elapsed.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.maybeProbeLocked()
}

// Reset resets the circuit breaker to closed state.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures = 0
	cb.successes = 0
	cb.halfOpenCalls = 0
	cb.transitionLocked(StateClosed)
}

// maybeProbeLocked applies the timed open→half-open transition.
func (cb *CircuitBreaker) maybeProbeLocked() State {
	if cb.state == StateOpen && time.Since(cb.lastFailure) > cb.config.ResetTimeout {
		cb.halfOpenCalls = 0
		cb.successes = 0
		cb.transitionLocked(StateHalfOpen)
	}
	return cb.state
}

// OnStateChange registers fn to run on every subsequent state transition,
// after any hook supplied in the config. Hooks run with the breaker's mutex
// held and must not call back into it.
func (cb *CircuitBreaker) OnStateChange(fn func(from, to State)) {
	if fn == nil {
		return
	}
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.hooks = append(cb.hooks, fn)
}

func (cb *CircuitBreaker) transitionLocked(to State) {
	from := cb.state
	if from == to {
		return
	}
	cb.state = to
	if cb.config.OnStateChange != nil {
		cb.config.OnStateChange(from, to)
	}
	for _, hook := range cb.hooks {
		hook(from, to)
	}
}

// Metrics returns current circuit breaker statistics.
func (cb *CircuitBreaker) Metrics() CircuitBreakerMetrics {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return CircuitBreakerMetrics{
		State:       cb.maybeProbeLocked(),
		Failures:    cb.failures,
		Successes:   cb.successes,
		LastFailure: cb.lastFailure,
	}
}

// CircuitBreakerMetrics contains circuit breaker statistics.
type CircuitBreakerMetrics struct {
	State       State
	Failures    int
	Successes   int
	LastFailure time.Time
}
