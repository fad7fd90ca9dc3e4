package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/clipkit/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "dev",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metric names.
const (
	MetricPipelineTotal      = "clipkit.pipeline.total"
	MetricPipelineDuration   = "clipkit.pipeline.duration"
	MetricStepDuration       = "clipkit.step.duration"
	MetricSegmentsCut        = "clipkit.segments.cut"
	MetricGapsRemovedSeconds = "clipkit.gaps.removed_seconds"
	MetricErrorTotal         = "clipkit.error.total"
)

// Metrics holds the pipeline instruments.
type Metrics struct {
	pipelineTotal    metric.Int64Counter
	pipelineDuration metric.Float64Histogram
	stepDuration     metric.Float64Histogram
	segmentsCut      metric.Int64Counter
	removedSeconds   metric.Float64Counter
	errorTotal       metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	pipelineTotal, err := meter.Int64Counter(MetricPipelineTotal,
		metric.WithDescription("Pipeline runs by pipeline and status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricPipelineTotal, err)
	}

	pipelineDuration, err := meter.Float64Histogram(MetricPipelineDuration,
		metric.WithDescription("Duration of pipeline runs in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricPipelineDuration, err)
	}

	stepDuration, err := meter.Float64Histogram(MetricStepDuration,
		metric.WithDescription("Duration of pipeline steps in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricStepDuration, err)
	}

	segmentsCut, err := meter.Int64Counter(MetricSegmentsCut,
		metric.WithDescription("Segments cut from source media"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricSegmentsCut, err)
	}

	removedSeconds, err := meter.Float64Counter(MetricGapsRemovedSeconds,
		metric.WithDescription("Seconds of silence removed"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricGapsRemovedSeconds, err)
	}

	errorTotal, err := meter.Int64Counter(MetricErrorTotal,
		metric.WithDescription("Pipeline errors by code and step"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricErrorTotal, err)
	}

	return &Metrics{
		pipelineTotal:    pipelineTotal,
		pipelineDuration: pipelineDuration,
		stepDuration:     stepDuration,
		segmentsCut:      segmentsCut,
		removedSeconds:   removedSeconds,
		errorTotal:       errorTotal,
	}, nil
}

// RecordPipeline records a finished pipeline run.
func (m *Metrics) RecordPipeline(ctx context.Context, pipeline, status string, duration time.Duration) {
	m.pipelineTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("pipeline", pipeline),
		attribute.String("status", status),
	))
	m.pipelineDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("pipeline", pipeline),
	))
}

// RecordStep records one pipeline step.
func (m *Metrics) RecordStep(ctx context.Context, pipeline, step, status string, duration time.Duration) {
	m.stepDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("pipeline", pipeline),
		attribute.String("step", step),
		attribute.String("status", status),
	))
}

// RecordSegmentsCut counts segments handed to the assembler.
func (m *Metrics) RecordSegmentsCut(ctx context.Context, pipeline string, n int) {
	m.segmentsCut.Add(ctx, int64(n), metric.WithAttributes(attribute.String("pipeline", pipeline)))
}

// RecordRemovedSeconds adds seconds of removed silence.
func (m *Metrics) RecordRemovedSeconds(ctx context.Context, seconds float64) {
	if seconds > 0 {
		m.removedSeconds.Add(ctx, seconds)
	}
}

// RecordError records an error by code and step.
func (m *Metrics) RecordError(ctx context.Context, code, step string) {
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("code", code),
		attribute.String("step", step),
	))
}
