package observe

import (
	"context"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// OpMeta describes one guarded operation performed under an account lease,
// for telemetry purposes.
type OpMeta struct {
	Op        string // Operation name, e.g. "book_slot" (required)
	AccountID int64  // Leased account id (0 when no lease is held)
	LeaseID   string // Lease token (may be empty)
	Session   int    // Session number within a worker run (0 when not session-scoped)
}

// SpanName returns the deterministic span name for this operation.
// Format: pool.op.<name>
func (m OpMeta) SpanName() string {
	return "pool.op." + m.Op
}

// Validate checks that the metadata names an operation.
func (m OpMeta) Validate() error {
	if m.Op == "" {
		return ErrMissingOpName
	}
	return nil
}

// Fields returns the metadata as structured log fields.
func (m OpMeta) Fields() []Field {
	fields := []Field{{Key: "op", Value: m.Op}}
	if m.AccountID != 0 {
		fields = append(fields, Field{Key: "account_id", Value: m.AccountID})
	}
	if m.LeaseID != "" {
		fields = append(fields, Field{Key: "lease_id", Value: m.LeaseID})
	}
	if m.Session > 0 {
		fields = append(fields, Field{Key: "session", Value: m.Session})
	}
	return fields
}

// Tracer wraps OpenTelemetry tracing with operation-scoped span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: StartSpan must honor cancellation/deadlines and return ctx.Err() when canceled.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for a guarded operation.
	StartSpan(ctx context.Context, meta OpMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording any error.
	EndSpan(span trace.Span, err error)
}

// tracerImpl is the concrete implementation of Tracer.
type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer creates a Tracer wrapping the given OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// StartSpan starts a new span with operation metadata as attributes.
func (t *tracerImpl) StartSpan(ctx context.Context, meta OpMeta) (context.Context, trace.Span) {
	spanName := meta.SpanName()

	// Build attributes
	attrs := []attribute.KeyValue{
		attribute.String("op.name", meta.Op),
		attribute.Bool("op.error", false), // Will be updated in EndSpan if error
	}

	if meta.AccountID != 0 {
		attrs = append(attrs, attribute.String("account.id", strconv.FormatInt(meta.AccountID, 10)))
	}
	if meta.LeaseID != "" {
		attrs = append(attrs, attribute.String("lease.id", meta.LeaseID))
	}
	if meta.Session > 0 {
		attrs = append(attrs, attribute.Int("session", meta.Session))
	}

	ctx, span := t.tracer.Start(ctx, spanName,
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)

	return ctx, span
}

// EndSpan ends the span and records the error status if present.
func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("op.error", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// NopTracer returns a tracer that records nothing.
func NopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

// noopTracer is a tracer that does nothing.
type noopTracer struct {
	noop trace.Tracer
}

func (t *noopTracer) StartSpan(ctx context.Context, meta OpMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, err error) {
	span.End()
}
