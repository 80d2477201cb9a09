package resilience

import "errors"

// Sentinel errors for resilience operations.
var (
	// ErrCircuitOpen is returned when the circuit breaker rejects a call
	// without invoking the guarded operation.
	ErrCircuitOpen = errors.New("resilience: circuit breaker is open")

	// ErrRetriesExhausted is returned when retry attempts are exhausted.
	// The last underlying error is attached via wrapping.
	ErrRetriesExhausted = errors.New("resilience: retries exhausted")

	// ErrTimeout is returned when an operation times out.
	ErrTimeout = errors.New("resilience: operation timed out")
)
