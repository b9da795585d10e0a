package aspect

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracing wraps each call in an OpenTelemetry span named after the
// function. The span's context replaces the call's context, so hooks later
// in the chain, and signals, see it. Deref is not traced.
type Tracing struct {
	tracer trace.Tracer
}

// NewTracing returns a Tracing aspect starting spans on tracer.
func NewTracing(tracer trace.Tracer) *Tracing {
	return &Tracing{tracer: tracer}
}

// Name implements Named.
func (t *Tracing) Name() string { return "tracing" }

type spanKey struct{ t *Tracing }

// Before starts the span.
func (t *Tracing) Before(c *Call) error {
	if c.Signature == nil {
		return nil
	}
	ctx, span := t.tracer.Start(c.Context(), c.Function,
		trace.WithAttributes(
			attribute.String("aspect.call_id", c.ID.String()),
			attribute.String("aspect.strategy", c.Signature.Strategy.String()),
			attribute.Int("aspect.args", len(c.Args)),
		),
	)
	c.SetContext(ctx)
	c.Set(spanKey{t}, span)
	return nil
}

// After ends the span with an Ok status.
func (t *Tracing) After(c *Call) error {
	if span, ok := t.span(c); ok {
		span.SetStatus(codes.Ok, "")
		span.End()
	}
	return nil
}

// OnError implements ErrorObserver. The span ends with the error recorded.
func (t *Tracing) OnError(c *Call, err error) {
	if span, ok := t.span(c); ok {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.End()
	}
}

func (t *Tracing) span(c *Call) (trace.Span, bool) {
	v, ok := c.Value(spanKey{t})
	if !ok {
		return nil, false
	}
	return v.(trace.Span), true
}
