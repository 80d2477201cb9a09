package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records pool and worker execution metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must honor cancellation/deadlines and return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordOperation records one guarded operation with duration and error status.
	RecordOperation(ctx context.Context, meta OpMeta, duration time.Duration, err error)

	// RecordLease records a completed lease with its reported result and
	// the time the lease was held.
	RecordLease(ctx context.Context, result string, held time.Duration)

	// RecordAcquireMiss records an acquire attempt that found no eligible account.
	RecordAcquireMiss(ctx context.Context)

	// RecordSweep records the transitions applied by one sweep pass.
	RecordSweep(ctx context.Context, cooldownExpired, quarantineExpired, leasesReclaimed int64)

	// RecordBreakerTransition records a circuit breaker state change.
	RecordBreakerTransition(ctx context.Context, name, from, to string)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	meter metric.Meter

	opCount    metric.Int64Counter
	opErrors   metric.Int64Counter
	opDuration metric.Float64Histogram

	leaseCount    metric.Int64Counter
	leaseDuration metric.Float64Histogram
	acquireMisses metric.Int64Counter

	sweepTransitions   metric.Int64Counter
	breakerTransitions metric.Int64Counter
}

// NewMetrics creates a Metrics instance recording through the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	return newMetrics(meter)
}

func newMetrics(meter metric.Meter) (*metricsImpl, error) {
	opCount, err := meter.Int64Counter(
		"pool.op.total",
		metric.WithDescription("Total number of guarded operations"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	opErrors, err := meter.Int64Counter(
		"pool.op.errors",
		metric.WithDescription("Total number of guarded operation errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	opDuration, err := meter.Float64Histogram(
		"pool.op.duration_ms",
		metric.WithDescription("Guarded operation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	leaseCount, err := meter.Int64Counter(
		"pool.lease.total",
		metric.WithDescription("Total number of completed leases by result"),
		metric.WithUnit("{lease}"),
	)
	if err != nil {
		return nil, err
	}

	leaseDuration, err := meter.Float64Histogram(
		"pool.lease.held_ms",
		metric.WithDescription("Time a lease was held in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	acquireMisses, err := meter.Int64Counter(
		"pool.acquire.misses",
		metric.WithDescription("Acquire attempts that found no eligible account"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, err
	}

	sweepTransitions, err := meter.Int64Counter(
		"pool.sweep.transitions",
		metric.WithDescription("Account transitions applied by the sweeper"),
		metric.WithUnit("{account}"),
	)
	if err != nil {
		return nil, err
	}

	breakerTransitions, err := meter.Int64Counter(
		"pool.breaker.transitions",
		metric.WithDescription("Circuit breaker state transitions"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		meter:              meter,
		opCount:            opCount,
		opErrors:           opErrors,
		opDuration:         opDuration,
		leaseCount:         leaseCount,
		leaseDuration:      leaseDuration,
		acquireMisses:      acquireMisses,
		sweepTransitions:   sweepTransitions,
		breakerTransitions: breakerTransitions,
	}, nil
}

// RecordOperation records metrics for one guarded operation.
func (m *metricsImpl) RecordOperation(ctx context.Context, meta OpMeta, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("op.name", meta.Op),
	}

	opt := metric.WithAttributes(attrs...)

	// Always increment total counter
	m.opCount.Add(ctx, 1, opt)

	// Increment error counter on failure
	if err != nil {
		m.opErrors.Add(ctx, 1, opt)
	}

	// Record duration in milliseconds
	durationMs := float64(duration.Milliseconds())
	m.opDuration.Record(ctx, durationMs, opt)
}

// RecordLease records a completed lease by result.
func (m *metricsImpl) RecordLease(ctx context.Context, result string, held time.Duration) {
	opt := metric.WithAttributes(attribute.String("result", result))
	m.leaseCount.Add(ctx, 1, opt)
	m.leaseDuration.Record(ctx, float64(held.Milliseconds()), opt)
}

// RecordAcquireMiss records an acquire attempt that found nothing eligible.
func (m *metricsImpl) RecordAcquireMiss(ctx context.Context) {
	m.acquireMisses.Add(ctx, 1)
}

// RecordSweep records the transitions applied by one sweep pass.
func (m *metricsImpl) RecordSweep(ctx context.Context, cooldownExpired, quarantineExpired, leasesReclaimed int64) {
	if cooldownExpired > 0 {
		m.sweepTransitions.Add(ctx, cooldownExpired,
			metric.WithAttributes(attribute.String("kind", "cooldown_expired")))
	}
	if quarantineExpired > 0 {
		m.sweepTransitions.Add(ctx, quarantineExpired,
			metric.WithAttributes(attribute.String("kind", "quarantine_expired")))
	}
	if leasesReclaimed > 0 {
		m.sweepTransitions.Add(ctx, leasesReclaimed,
			metric.WithAttributes(attribute.String("kind", "lease_reclaimed")))
	}
}

// RecordBreakerTransition records one circuit breaker state change.
func (m *metricsImpl) RecordBreakerTransition(ctx context.Context, name, from, to string) {
	m.breakerTransitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("breaker", name),
		attribute.String("from", from),
		attribute.String("to", to),
	))
}

// NopMetrics returns a Metrics implementation that records nothing.
func NopMetrics() Metrics {
	return &noopMetrics{}
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

func (m *noopMetrics) RecordOperation(ctx context.Context, meta OpMeta, duration time.Duration, err error) {
}
func (m *noopMetrics) RecordLease(ctx context.Context, result string, held time.Duration) {}
func (m *noopMetrics) RecordAcquireMiss(ctx context.Context)                              {}
func (m *noopMetrics) RecordSweep(ctx context.Context, cooldownExpired, quarantineExpired, leasesReclaimed int64) {
}
func (m *noopMetrics) RecordBreakerTransition(ctx context.Context, name, from, to string) {}
