// Package tracing wraps the OpenTelemetry span boilerplate around the
// coordinator's store round trips (acquire, extend, release), matching the
// teacher's telemetry example wiring.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// StartSpan starts a span named spanName under the named tracer and
// returns a derived context plus a closure that ends the span, recording
// err (if non-nil) as the span's status.
func StartSpan(ctx context.Context, tracerName, spanName string, attrs ...attribute.KeyValue) (context.Context, func(err error)) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, spanName)
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}
