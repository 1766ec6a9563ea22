package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// setupMetricsTest installs a test meter provider backed by a manual reader.
func setupMetricsTest(t *testing.T) (*sdkmetric.ManualReader, func()) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	originalProvider := otel.GetMeterProvider()
	otel.SetMeterProvider(provider)

	cleanup := func() {
		otel.SetMeterProvider(originalProvider)
		if err := provider.Shutdown(context.Background()); err != nil {
			t.Logf("Error shutting down meter provider: %v", err)
		}
	}
	return reader, cleanup
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) *metricdata.ResourceMetrics {
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return &rm
}

func findMetric(rm *metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func sumOf(t *testing.T, m *metricdata.Metrics) int64 {
	t.Helper()
	require.NotNil(t, m)
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "Expected Sum type")
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestNewMetricsRecorder(t *testing.T) {
	_, cleanup := setupMetricsTest(t)
	defer cleanup()

	recorder := NewMetricsRecorder()
	require.NotNil(t, recorder)
	_, isNoop := recorder.(NoopMetrics)
	assert.False(t, isNoop, "Expected real metrics recorder, got noop")
}

func TestRecordFlush(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics(otel.Meter("gobinding"))
	require.NoError(t, err)
	ctx := context.Background()

	m.RecordFlush(ctx, 3)
	m.RecordFlush(ctx, 2)

	rm := collectMetrics(t, reader)
	assert.Equal(t, int64(2), sumOf(t, findMetric(rm, "gobinding.flush.drains")))
	assert.Equal(t, int64(5), sumOf(t, findMetric(rm, "gobinding.flush.items")))
}

func TestRecordDirtyCheck(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics(otel.Meter("gobinding"))
	require.NoError(t, err)
	ctx := context.Background()

	m.RecordDirtyCheck(ctx, 4, 0)
	m.RecordDirtyCheck(ctx, 4, 2)

	rm := collectMetrics(t, reader)
	assert.Equal(t, int64(2), sumOf(t, findMetric(rm, "gobinding.dirtycheck.passes")))
	assert.Equal(t, int64(2), sumOf(t, findMetric(rm, "gobinding.dirtycheck.changed")))
}

func TestRecordParse(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics(otel.Meter("gobinding"))
	require.NoError(t, err)
	ctx := context.Background()

	m.RecordParse(ctx, "expression", false)
	m.RecordParse(ctx, "expression", true)
	m.RecordParse(ctx, "interpolation", true)

	rm := collectMetrics(t, reader)
	metric := findMetric(rm, "gobinding.parser.requests")
	require.NotNil(t, metric)
	sum, ok := metric.Data.(metricdata.Sum[int64])
	require.True(t, ok)

	hits := int64(0)
	for _, dp := range sum.DataPoints {
		for _, attr := range dp.Attributes.ToSlice() {
			if attr.Key == "cache_hit" && attr.Value.AsBool() {
				hits += dp.Value
			}
		}
	}
	assert.Equal(t, int64(2), hits)
}

func TestRecordEvaluation(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics(otel.Meter("gobinding"))
	require.NoError(t, err)
	ctx := context.Background()

	m.RecordEvaluation(ctx, 2*time.Millisecond, nil)
	m.RecordEvaluation(ctx, time.Millisecond, errors.New("boom"))
	m.RecordObserverCreated(ctx, "setter")

	rm := collectMetrics(t, reader)
	assert.Equal(t, int64(2), sumOf(t, findMetric(rm, "gobinding.evaluations")))
	assert.Equal(t, int64(1), sumOf(t, findMetric(rm, "gobinding.evaluation.errors")))
	assert.Equal(t, int64(1), sumOf(t, findMetric(rm, "gobinding.observers.created")))

	hist := findMetric(rm, "gobinding.evaluation.latency_ms")
	require.NotNil(t, hist)
	_, ok := hist.Data.(metricdata.Histogram[float64])
	assert.True(t, ok, "Expected Histogram type")
}

func TestNoopMetrics(t *testing.T) {
	var m MetricsRecorder = NoopMetrics{}
	ctx := context.Background()
	assert.NotPanics(t, func() {
		m.RecordFlush(ctx, 1)
		m.RecordDirtyCheck(ctx, 1, 1)
		m.RecordParse(ctx, "expression", true)
		m.RecordObserverCreated(ctx, "computed")
		m.RecordEvaluation(ctx, time.Second, errors.New("x"))
	})
}

func TestNewMetricsRecorderWithProvider(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := NewMetricsRecorderWithProvider(provider)
	require.NoError(t, err)
	m.RecordObserverCreated(context.Background(), "setter")
	m.RecordObserverCreated(context.Background(), "array")

	rm := collectMetrics(t, reader)
	assert.Equal(t, int64(2), sumOf(t, findMetric(rm, "gobinding.observers.created")))
}
