// Package otel provides tracing helpers shared by the sync components.
package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys recorded on sync spans
const (
	AttrSyncReason    = attribute.Key("sync.reason")
	AttrSyncEngines   = attribute.Key("sync.engines")
	AttrSyncDebounce  = attribute.Key("sync.debounce")
	AttrSyncOutcome   = attribute.Key("sync.outcome")
	AttrServiceStatus = attribute.Key("sync.service_status")
	AttrDeclinedCount = attribute.Key("sync.declined.count")
	AttrJobName       = attribute.Key("job.name")
	AttrJobRunAttempt = attribute.Key("job.run_attempt")
	AttrJobRunID      = attribute.Key("job.run_id")
)

// StartSpan starts a span on tracer, or returns the span already in ctx when tracer is nil.
func StartSpan(
	ctx context.Context,
	tracer trace.Tracer,
	name string,
	opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, name, opts...)
}

// RecordError records err on span and marks the span failed.
// The status description stays generic so credentials never leak into it;
// the error itself is kept on the span event.
func RecordError(span trace.Span, err error) {
	if err != nil && span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "operation failed")
	}
}

// SetOutcome records the job outcome on span, marking it failed unless the outcome is success.
func SetOutcome(span trace.Span, outcome string) {
	if span == nil {
		return
	}
	span.SetAttributes(AttrSyncOutcome.String(outcome))
	if outcome != "success" {
		span.SetStatus(codes.Error, outcome)
	}
}
