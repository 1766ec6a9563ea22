package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracer uses the global OTel tracer provider.
var tracer = otel.Tracer("gobinding")

// SpanManager handles trace span lifecycle.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartEvaluateSpan starts a span for a single expression evaluation.
	StartEvaluateSpan(ctx context.Context, expression string) (context.Context, trace.Span)

	// StartBindSpan starts a span for a binding activation.
	StartBindSpan(ctx context.Context, bindingID, expression string) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)

	// AddSpanEvent adds an event to the current span in context.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

// otelSpanManager implements SpanManager using OpenTelemetry.
type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses OpenTelemetry.
//
// The span manager uses the global OTel tracer provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetTracerProvider(yourProvider)
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

// StartEvaluateSpan starts a span for an expression evaluation.
func (m *otelSpanManager) StartEvaluateSpan(ctx context.Context, expression string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "gobinding.evaluate",
		trace.WithAttributes(
			attribute.String("expression", expression),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartBindSpan starts a span for a binding activation.
func (m *otelSpanManager) StartBindSpan(ctx context.Context, bindingID, expression string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "gobinding.bind",
		trace.WithAttributes(
			attribute.String("binding.id", bindingID),
			attribute.String("expression", expression),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddSpanEvent adds an event to the current span.
func (m *otelSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
