package observe

import (
	"context"
	"time"
)

// OperationFunc is the signature for guarded operation functions.
// This is the standard function signature that Middleware wraps.
type OperationFunc func(ctx context.Context, meta OpMeta) error

// Middleware wraps guarded operations with observability (tracing, metrics, logging).
//
// Contract:
//   - Concurrency: Wrap() returns a thread-safe OperationFunc.
//   - Context: Propagates context through tracing spans.
//   - Errors: Errors from the wrapped function are recorded and propagated unchanged.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a new Middleware with the given observability components.
// Nil components default to no-ops.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	if tracer == nil {
		tracer = NopTracer()
	}
	if metrics == nil {
		metrics = NopMetrics()
	}
	if logger == nil {
		logger = NopLogger()
	}
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// Wrap wraps an OperationFunc with tracing, metrics, and logging.
func (m *Middleware) Wrap(fn OperationFunc) OperationFunc {
	return func(ctx context.Context, meta OpMeta) error {
		// Start span
		ctx, span := m.tracer.StartSpan(ctx, meta)

		// Record start time
		start := time.Now()

		// Execute the function
		err := fn(ctx, meta)

		// Calculate duration
		duration := time.Since(start)

		// End span (records error status if err != nil)
		m.tracer.EndSpan(span, err)

		// Record metrics
		m.metrics.RecordOperation(ctx, meta, duration, err)

		// Log the execution
		opLogger := m.logger.With(meta.Fields()...)
		fields := []Field{
			{Key: "duration_ms", Value: float64(duration.Milliseconds())},
		}

		if err != nil {
			fields = append(fields, Field{Key: "error", Value: err.Error()})
			opLogger.Error(ctx, "operation failed", fields...)
		} else {
			opLogger.Info(ctx, "operation completed", fields...)
		}

		return err
	}
}

// MiddlewareFromObserver creates a Middleware from an Observer.
// This is a convenience function for common use cases.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	tracer := NewTracer(obs.Tracer())

	metrics, err := newMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewMiddleware(tracer, metrics, obs.Logger()), nil
}
