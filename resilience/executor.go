package resilience

import (
	"context"
	"time"
)

// Executor composes multiple resilience patterns around one guarded call.
type Executor struct {
	rateLimiter    *WindowLimiter
	circuitBreaker *CircuitBreaker
	retry          *Retry
	timeout        *Timeout
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// NewExecutor creates a new resilience executor.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithRateLimiter adds sliding-window rate limiting to the executor.
func WithRateLimiter(wl *WindowLimiter) ExecutorOption {
	return func(e *Executor) {
		e.rateLimiter = wl
	}
}

// WithCircuitBreaker adds a circuit breaker to the executor.
func WithCircuitBreaker(cb *CircuitBreaker) ExecutorOption {
	return func(e *Executor) {
		e.circuitBreaker = cb
	}
}

// WithRetry adds retry logic to the executor.
func WithRetry(r *Retry) ExecutorOption {
	return func(e *Executor) {
		e.retry = r
	}
}

// WithTimeout adds a timeout to the executor.
func WithTimeout(timeout time.Duration) ExecutorOption {
	return func(e *Executor) {
		e.timeout = NewTimeout(TimeoutConfig{Timeout: timeout})
	}
}

// WithTimeoutConfig adds timeout with custom config to the executor.
func WithTimeoutConfig(t *Timeout) ExecutorOption {
	return func(e *Executor) {
		e.timeout = t
	}
}

// Execute runs the operation through all configured resilience patterns.
//
// The execution order is:
// 1. Rate Limiter (if configured) - admits the call under the window
// 2. Circuit Breaker (if configured) - rejects fast when unhealthy
// 3. Retry (if configured) - retries retryable failures
// 4. Timeout (if configured) - bounds each attempt's duration
func (e *Executor) Execute(ctx context.Context, op func(context.Context) error) error {
	// Build the execution chain from inside out
	execute := op

	// Wrap with timeout (innermost)
	if e.timeout != nil {
		inner := execute
		execute = func(ctx context.Context) error {
			return e.timeout.Execute(ctx, inner)
		}
	}

	// Wrap with retry
	if e.retry != nil {
		inner := execute
		execute = func(ctx context.Context) error {
			return e.retry.Execute(ctx, inner)
		}
	}

	// Wrap with circuit breaker
	if e.circuitBreaker != nil {
		inner := execute
		execute = func(ctx context.Context) error {
			return e.circuitBreaker.Execute(ctx, inner)
		}
	}

	// Wrap with rate limiter (outermost)
	if e.rateLimiter != nil {
		inner := execute
		execute = func(ctx context.Context) error {
			return e.rateLimiter.Execute(ctx, inner)
		}
	}

	return execute(ctx)
}
