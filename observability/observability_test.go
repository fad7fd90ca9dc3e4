package observability

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/clipkit/errors"
)

func installRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return rec
}

func attr(attrs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, kv := range attrs {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestConfigApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Endpoint != "localhost:4318" {
		t.Errorf("Endpoint = %s", cfg.Endpoint)
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("SampleRate = %v", cfg.SampleRate)
	}
	if cfg.MetricInterval != 15*time.Second {
		t.Errorf("MetricInterval = %v", cfg.MetricInterval)
	}
}

func TestSetupDisabled(t *testing.T) {
	shutdown, err := Setup(context.Background(), Config{}, Resource{Service: "clipkit"})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown: %v", err)
	}
}

func TestDefaultConfigs(t *testing.T) {
	tc := DefaultTracerConfig("clipkit")
	if tc.ServiceName != "clipkit" || tc.SampleRate != 1.0 || !tc.Insecure {
		t.Errorf("tracer config = %+v", tc)
	}
	mc := DefaultMeterConfig("clipkit")
	if mc.Interval != 15*time.Second || mc.Endpoint != "localhost:4318" {
		t.Errorf("meter config = %+v", mc)
	}
}

func TestSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1.0, "AlwaysOnSampler"},
		{2.0, "AlwaysOnSampler"},
		{0, "AlwaysOffSampler"},
		{0.25, "TraceIDRatioBased{0.25}"},
	}
	for _, tt := range tests {
		if got := sampler(tt.rate).Description(); got != tt.want {
			t.Errorf("sampler(%v) = %s, want %s", tt.rate, got, tt.want)
		}
	}
}

func TestNewResource(t *testing.T) {
	res, err := newResource("clipkit", "1.2.3", "test")
	if err != nil {
		t.Fatalf("newResource: %v", err)
	}
	v, ok := attr(res.Attributes(), AttrServiceName)
	if !ok || v.AsString() != "clipkit" {
		t.Errorf("service.name = %v", v)
	}
}

func TestOperationSpans(t *testing.T) {
	rec := installRecorder(t)

	ctx, op := StartOperation(context.Background(), "silence", "job-1", nil)
	if OperationFromContext(ctx) != op {
		t.Fatal("operation not stored in context")
	}

	_, done := op.Step(ctx, "transcribe")
	done(nil)
	_, done = op.Step(ctx, "cut")
	done(errors.ExternalServiceError("ffmpeg", nil))
	op.End(ctx, nil)

	spans := rec.Ended()
	if len(spans) != 3 {
		t.Fatalf("ended spans = %d, want 3", len(spans))
	}

	transcribe, cut, root := spans[0], spans[1], spans[2]
	if root.Name() != SpanPipeline {
		t.Errorf("root span = %s", root.Name())
	}
	if transcribe.Parent().SpanID() != root.SpanContext().SpanID() {
		t.Error("step span is not a child of the pipeline span")
	}
	if v, _ := attr(transcribe.Attributes(), AttrStep); v.AsString() != "transcribe" {
		t.Errorf("step attr = %v", v)
	}
	if cut.Status().Code != codes.Error {
		t.Errorf("failed step status = %v", cut.Status().Code)
	}
	if v, _ := attr(cut.Attributes(), AttrErrorCode); v.AsString() != string(errors.ErrCodeExternalService) {
		t.Errorf("error code = %v", v)
	}
	if v, _ := attr(root.Attributes(), AttrStatus); v.AsString() != StatusOK {
		t.Errorf("root status = %v", v)
	}
}

func TestOperationFromContextNotSet(t *testing.T) {
	if OperationFromContext(context.Background()) != nil {
		t.Error("expected nil when operation not set")
	}
}

func TestOperationMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(context.Background()) }()

	metrics, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	ctx, op := StartOperation(context.Background(), "silence", "job-1", metrics)
	_, done := op.Step(ctx, "cut")
	done(errors.Timeout("cut"))
	metrics.RecordSegmentsCut(ctx, "silence", 4)
	metrics.RecordRemovedSeconds(ctx, 2.5)
	metrics.RecordRemovedSeconds(ctx, 0)
	op.End(ctx, errors.Timeout("cut"))

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	got := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			got[m.Name] = m.Data
		}
	}

	for _, name := range []string{MetricPipelineTotal, MetricPipelineDuration, MetricStepDuration, MetricErrorTotal} {
		if _, ok := got[name]; !ok {
			t.Errorf("metric %s not recorded", name)
		}
	}
	if sum, ok := got[MetricSegmentsCut].(metricdata.Sum[int64]); !ok || sum.DataPoints[0].Value != 4 {
		t.Errorf("%s = %+v", MetricSegmentsCut, got[MetricSegmentsCut])
	}
	if sum, ok := got[MetricGapsRemovedSeconds].(metricdata.Sum[float64]); !ok || sum.DataPoints[0].Value != 2.5 {
		t.Errorf("%s = %+v", MetricGapsRemovedSeconds, got[MetricGapsRemovedSeconds])
	}
}

func TestNewMetricsNoop(t *testing.T) {
	metrics, err := NewMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	ctx := context.Background()
	metrics.RecordPipeline(ctx, "captions", StatusOK, time.Second)
	metrics.RecordStep(ctx, "captions", "burn", StatusOK, time.Second)
	metrics.RecordError(ctx, "TIMEOUT", "transcribe")
}

func TestSetSpanAttribute(t *testing.T) {
	rec := installRecorder(t)

	ctx, span := StartSpan(context.Background(), "test")
	SetSpanAttribute(ctx, "segments", 3)
	SetSpanAttribute(ctx, "mode", "fast")
	SetSpanAttribute(ctx, "ignored", struct{}{})
	span.End()

	attrs := rec.Ended()[0].Attributes()
	if v, ok := attr(attrs, "segments"); !ok || v.AsInt64() != 3 {
		t.Errorf("segments = %v", v)
	}
	if _, ok := attr(attrs, "ignored"); ok {
		t.Error("unsupported value type should be skipped")
	}

	// Without a recording span the call is a no-op.
	SetSpanAttribute(context.Background(), "k", "v")
}

func TestServiceHealth(t *testing.T) {
	tests := []struct {
		name     string
		statuses []HealthStatus
		want     HealthStatus
	}{
		{"all up", []HealthStatus{HealthStatusUp, HealthStatusUp}, HealthStatusUp},
		{"degraded", []HealthStatus{HealthStatusUp, HealthStatusDegraded}, HealthStatusDegraded},
		{"down wins", []HealthStatus{HealthStatusDown, HealthStatusDegraded}, HealthStatusDown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var checkers []HealthChecker
			for i, s := range tt.statuses {
				s, name := s, string(rune('a'+i))
				checkers = append(checkers, CheckerFunc(func(context.Context) Health {
					return Health{Name: name, Status: s}
				}))
			}
			sh := Check(context.Background(), "clipkit", "1.0.0", checkers...)
			if sh.Status != tt.want {
				t.Errorf("status = %s, want %s", sh.Status, tt.want)
			}
			if len(sh.Components) != len(tt.statuses) {
				t.Errorf("components = %d", len(sh.Components))
			}
			if sh.Service != "clipkit" || sh.Version != "1.0.0" {
				t.Errorf("health = %+v", sh)
			}
		})
	}
}
