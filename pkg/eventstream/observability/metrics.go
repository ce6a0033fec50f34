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

// MetricsRecorder records eventstream metrics.
// Use NewMetricsRecorder() for OTel metrics, NewPromMetrics for Prometheus,
// or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordPublish records one publish call, its fan-out, and how long
	// delivery to every subscriber took.
	RecordPublish(ctx context.Context, eventType string, subscribers int, duration time.Duration)

	// RecordSubscriberError records one absorbed subscriber failure.
	RecordSubscriberError(ctx context.Context, eventType string)

	// RecordAppend records one append attempt and whether it failed.
	RecordAppend(ctx context.Context, eventType string, duration time.Duration, err error)

	// RecordReplay records one replay run.
	RecordReplay(ctx context.Context, count int, duration time.Duration, err error)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	publishes        metric.Int64Counter
	publishLatency   metric.Float64Histogram
	fanout           metric.Int64Histogram
	subscriberErrors metric.Int64Counter
	appends          metric.Int64Counter
	appendErrors     metric.Int64Counter
	appendLatency    metric.Float64Histogram
	replays          metric.Int64Counter
	replayedEvents   metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics lazily initializes the OTel instruments on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("eventstream")
	m := &otelMetrics{}
	var err error

	if m.publishes, err = meter.Int64Counter("eventstream.publish.count",
		metric.WithDescription("Number of publish calls"),
	); err != nil {
		return nil, err
	}
	if m.publishLatency, err = meter.Float64Histogram("eventstream.publish.latency_ms",
		metric.WithDescription("Time to deliver one event to all subscribers"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}
	if m.fanout, err = meter.Int64Histogram("eventstream.publish.subscribers",
		metric.WithDescription("Subscribers invoked per publish"),
	); err != nil {
		return nil, err
	}
	if m.subscriberErrors, err = meter.Int64Counter("eventstream.subscriber.errors",
		metric.WithDescription("Subscriber failures absorbed by the dispatcher"),
	); err != nil {
		return nil, err
	}
	if m.appends, err = meter.Int64Counter("eventstream.append.count",
		metric.WithDescription("Number of append attempts"),
	); err != nil {
		return nil, err
	}
	if m.appendErrors, err = meter.Int64Counter("eventstream.append.errors",
		metric.WithDescription("Number of failed appends"),
	); err != nil {
		return nil, err
	}
	if m.appendLatency, err = meter.Float64Histogram("eventstream.append.latency_ms",
		metric.WithDescription("Append latency including flush"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}
	if m.replays, err = meter.Int64Counter("eventstream.replay.runs",
		metric.WithDescription("Number of replay runs"),
	); err != nil {
		return nil, err
	}
	if m.replayedEvents, err = meter.Int64Counter("eventstream.replay.events",
		metric.WithDescription("Events republished by replay"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
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

func (m *otelMetrics) RecordPublish(ctx context.Context, eventType string, subscribers int, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String("event_type", eventType))
	m.publishes.Add(ctx, 1, attrs)
	m.publishLatency.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	m.fanout.Record(ctx, int64(subscribers), attrs)
}

func (m *otelMetrics) RecordSubscriberError(ctx context.Context, eventType string) {
	m.subscriberErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("event_type", eventType)))
}

func (m *otelMetrics) RecordAppend(ctx context.Context, eventType string, duration time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.String("event_type", eventType))
	m.appends.Add(ctx, 1, attrs)
	m.appendLatency.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	if err != nil {
		m.appendErrors.Add(ctx, 1, attrs)
	}
}

func (m *otelMetrics) RecordReplay(ctx context.Context, count int, _ time.Duration, err error) {
	m.replays.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", err == nil)))
	m.replayedEvents.Add(ctx, int64(count))
}
