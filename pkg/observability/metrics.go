package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records binding runtime metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordFlush records one drain of the flush queue and how many items it flushed.
	RecordFlush(ctx context.Context, items int)

	// RecordDirtyCheck records one dirty-checking pass.
	RecordDirtyCheck(ctx context.Context, properties, changed int)

	// RecordParse records a parse request and whether the cache served it.
	RecordParse(ctx context.Context, category string, cacheHit bool)

	// RecordObserverCreated records the creation of an observer of the given kind.
	RecordObserverCreated(ctx context.Context, kind string)

	// RecordEvaluation records an expression evaluation with its duration and error status.
	RecordEvaluation(ctx context.Context, duration time.Duration, err error)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	flushes          metric.Int64Counter
	flushedItems     metric.Int64Counter
	dirtyChecks      metric.Int64Counter
	dirtyChanged     metric.Int64Counter
	parses           metric.Int64Counter
	observersCreated metric.Int64Counter
	evaluations      metric.Int64Counter
	evalLatency      metric.Float64Histogram
	evalErrors       metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics(otel.Meter("gobinding"))
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates the instruments on meter.
func newOtelMetrics(meter metric.Meter) (*otelMetrics, error) {
	flushes, err := meter.Int64Counter("gobinding.flush.drains",
		metric.WithDescription("Number of flush queue drains"),
	)
	if err != nil {
		return nil, err
	}

	flushedItems, err := meter.Int64Counter("gobinding.flush.items",
		metric.WithDescription("Number of observers flushed"),
	)
	if err != nil {
		return nil, err
	}

	dirtyChecks, err := meter.Int64Counter("gobinding.dirtycheck.passes",
		metric.WithDescription("Number of dirty-checking passes"),
	)
	if err != nil {
		return nil, err
	}

	dirtyChanged, err := meter.Int64Counter("gobinding.dirtycheck.changed",
		metric.WithDescription("Number of dirty-checked properties found changed"),
	)
	if err != nil {
		return nil, err
	}

	parses, err := meter.Int64Counter("gobinding.parser.requests",
		metric.WithDescription("Number of parse requests"),
	)
	if err != nil {
		return nil, err
	}

	observersCreated, err := meter.Int64Counter("gobinding.observers.created",
		metric.WithDescription("Number of observers created by the locator"),
	)
	if err != nil {
		return nil, err
	}

	evaluations, err := meter.Int64Counter("gobinding.evaluations",
		metric.WithDescription("Number of expression evaluations"),
	)
	if err != nil {
		return nil, err
	}

	evalLatency, err := meter.Float64Histogram("gobinding.evaluation.latency_ms",
		metric.WithDescription("Expression evaluation latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	evalErrors, err := meter.Int64Counter("gobinding.evaluation.errors",
		metric.WithDescription("Number of failed expression evaluations"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		flushes:          flushes,
		flushedItems:     flushedItems,
		dirtyChecks:      dirtyChecks,
		dirtyChanged:     dirtyChanged,
		parses:           parses,
		observersCreated: observersCreated,
		evaluations:      evaluations,
		evalLatency:      evalLatency,
		evalErrors:       evalErrors,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// NewMetricsRecorderWithProvider returns a MetricsRecorder whose
// instruments come from provider instead of the global one.
func NewMetricsRecorderWithProvider(provider metric.MeterProvider) (MetricsRecorder, error) {
	m, err := newOtelMetrics(provider.Meter("gobinding"))
	if err != nil {
		return nil, err
	}
	return m, nil
}

// RecordFlush records a flush queue drain.
func (m *otelMetrics) RecordFlush(ctx context.Context, items int) {
	m.flushes.Add(ctx, 1)
	m.flushedItems.Add(ctx, int64(items))
}

// RecordDirtyCheck records a dirty-checking pass.
func (m *otelMetrics) RecordDirtyCheck(ctx context.Context, properties, changed int) {
	m.dirtyChecks.Add(ctx, 1, metric.WithAttributes(attribute.Int("properties", properties)))
	if changed > 0 {
		m.dirtyChanged.Add(ctx, int64(changed))
	}
}

// RecordParse records a parse request.
func (m *otelMetrics) RecordParse(ctx context.Context, category string, cacheHit bool) {
	m.parses.Add(ctx, 1, metric.WithAttributes(
		attribute.String("category", category),
		attribute.Bool("cache_hit", cacheHit),
	))
}

// RecordObserverCreated records observer creation.
func (m *otelMetrics) RecordObserverCreated(ctx context.Context, kind string) {
	m.observersCreated.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordEvaluation records an expression evaluation.
func (m *otelMetrics) RecordEvaluation(ctx context.Context, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.Bool("success", err == nil),
	}
	m.evaluations.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.evalLatency.Record(ctx, float64(duration.Microseconds())/1000, metric.WithAttributes(attrs...))
	if err != nil {
		m.evalErrors.Add(ctx, 1)
	}
}
