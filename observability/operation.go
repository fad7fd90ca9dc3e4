package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/clipkit/errors"
)

// Status values recorded on spans and metrics.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Operation tracks one pipeline run: a root span, per-step child spans and
// the run's metrics.
type Operation struct {
	Pipeline  string
	RequestID string
	StartTime time.Time
	Metrics   *Metrics

	span trace.Span
}

type operationContextKey struct{}

// StartOperation starts the root span for a pipeline run.
// If metrics is nil, metric recording is silently skipped.
func StartOperation(ctx context.Context, pipeline, requestID string, metrics *Metrics) (context.Context, *Operation) {
	ctx, span := StartSpan(ctx, SpanPipeline, trace.WithAttributes(
		attribute.String(AttrPipeline, pipeline),
		attribute.String(AttrRequestID, requestID),
	))
	op := &Operation{
		Pipeline:  pipeline,
		RequestID: requestID,
		StartTime: time.Now(),
		Metrics:   metrics,
		span:      span,
	}
	return context.WithValue(ctx, operationContextKey{}, op), op
}

// OperationFromContext retrieves the Operation from context, or nil.
func OperationFromContext(ctx context.Context) *Operation {
	if op, ok := ctx.Value(operationContextKey{}).(*Operation); ok {
		return op
	}
	return nil
}

// Step starts a child span for a pipeline step. The returned func ends it
// and records the step duration; call it exactly once with the step's error.
func (o *Operation) Step(ctx context.Context, step string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := StartSpan(ctx, SpanStep, trace.WithAttributes(
		attribute.String(AttrPipeline, o.Pipeline),
		attribute.String(AttrStep, step),
	))
	return ctx, func(err error) {
		status := finish(span, err, time.Since(start))
		if o.Metrics == nil {
			return
		}
		o.Metrics.RecordStep(ctx, o.Pipeline, step, status, time.Since(start))
		if err != nil {
			o.Metrics.RecordError(ctx, errorCode(err), step)
		}
	}
}

// End finishes the root span and records the pipeline outcome.
func (o *Operation) End(ctx context.Context, err error) {
	status := finish(o.span, err, o.Duration())
	if o.Metrics != nil {
		o.Metrics.RecordPipeline(ctx, o.Pipeline, status, o.Duration())
	}
}

// Duration returns the elapsed time since operation start.
func (o *Operation) Duration() time.Duration {
	return time.Since(o.StartTime)
}

func finish(span trace.Span, err error, d time.Duration) string {
	status := StatusOK
	if err != nil {
		status = StatusError
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(
			attribute.String(AttrErrorCode, errorCode(err)),
			attribute.String(AttrErrorMessage, err.Error()),
		)
	}
	span.SetAttributes(
		attribute.String(AttrStatus, status),
		attribute.Int64(AttrDurationMs, d.Milliseconds()),
	)
	span.End()
	return status
}

func errorCode(err error) string {
	if appErr, ok := errors.AsAppError(err); ok {
		return string(appErr.Code)
	}
	return string(errors.ErrCodeInternal)
}
