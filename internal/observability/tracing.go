package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope for client spans.
const TracerName = "github.com/danmuck/pine"

// Tracer resolves the client tracer from the global provider. Without a
// configured provider every span is a no-op.
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}

// StartBatchSpan opens the span wrapping one batch exchange.
func StartBatchSpan(ctx context.Context, tracer trace.Tracer, commands int, requestBytes int) (context.Context, trace.Span) {
	if tracer == nil {
		tracer = Tracer()
	}
	return tracer.Start(ctx, "pine.send",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.Int("pine.batch.commands", commands),
			attribute.Int("pine.batch.request_bytes", requestBytes),
		),
	)
}

// EndSpan records err (if any) and ends span.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
