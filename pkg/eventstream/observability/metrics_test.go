package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// setupMetricsTest creates a test meter provider and returns a function to collect metrics.
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

// collectMetrics collects all metrics from the reader.
func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) *metricdata.ResourceMetrics {
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return &rm
}

// findMetric finds a metric by name in the collected data.
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

// sumInt64 adds every data point of an Int64 sum, optionally filtered by one attribute.
func sumInt64(t *testing.T, m *metricdata.Metrics, filter ...attribute.KeyValue) int64 {
	t.Helper()
	require.NotNil(t, m)
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is %T", m.Name, m.Data)

	var total int64
	for _, dp := range sum.DataPoints {
		match := true
		for _, kv := range filter {
			if v, ok := dp.Attributes.Value(kv.Key); !ok || v != kv.Value {
				match = false
			}
		}
		if match {
			total += dp.Value
		}
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

func TestOtelMetrics(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	// Build instruments against the test provider rather than the shared default.
	m, err := newOtelMetrics()
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordPublish(ctx, "a", 2, 3*time.Millisecond)
	m.RecordPublish(ctx, "a", 0, time.Millisecond)
	m.RecordPublish(ctx, "b", 1, time.Millisecond)
	m.RecordSubscriberError(ctx, "a")
	m.RecordAppend(ctx, "a", time.Millisecond, nil)
	m.RecordAppend(ctx, "a", time.Millisecond, errors.New("disk"))
	m.RecordReplay(ctx, 5, time.Second, nil)
	m.RecordReplay(ctx, 2, time.Second, errors.New("corrupt"))

	rm := collectMetrics(t, reader)

	assert.Equal(t, int64(2), sumInt64(t, findMetric(rm, "eventstream.publish.count"), attribute.String("event_type", "a")))
	assert.Equal(t, int64(3), sumInt64(t, findMetric(rm, "eventstream.publish.count")))
	assert.Equal(t, int64(1), sumInt64(t, findMetric(rm, "eventstream.subscriber.errors")))
	assert.Equal(t, int64(2), sumInt64(t, findMetric(rm, "eventstream.append.count")))
	assert.Equal(t, int64(1), sumInt64(t, findMetric(rm, "eventstream.append.errors")))
	assert.Equal(t, int64(1), sumInt64(t, findMetric(rm, "eventstream.replay.runs"), attribute.Bool("success", false)))
	assert.Equal(t, int64(7), sumInt64(t, findMetric(rm, "eventstream.replay.events")))

	latency := findMetric(rm, "eventstream.publish.latency_ms")
	require.NotNil(t, latency)
	hist, ok := latency.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(3), count)
}
