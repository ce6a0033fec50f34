package observability

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PromMetrics implements MetricsRecorder with Prometheus collectors.
type PromMetrics struct {
	publishTotal          *prometheus.CounterVec
	publishDuration       *prometheus.HistogramVec
	publishSubscribers    *prometheus.HistogramVec
	subscriberErrorsTotal *prometheus.CounterVec
	appendTotal           *prometheus.CounterVec
	appendDuration        *prometheus.HistogramVec
	replayTotal           *prometheus.CounterVec
	replayedEventsTotal   prometheus.Counter
}

// NewPromMetrics creates the collectors and registers them with reg.
func NewPromMetrics(reg prometheus.Registerer) (*PromMetrics, error) {
	m := &PromMetrics{
		publishTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eventstream_publish_total",
				Help: "Total number of publish calls",
			},
			[]string{"event_type"},
		),
		publishDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "eventstream_publish_duration_seconds",
				Help:    "Time to deliver one event to all subscribers",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"event_type"},
		),
		publishSubscribers: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "eventstream_publish_subscribers",
				Help:    "Subscribers invoked per publish",
				Buckets: []float64{0, 1, 2, 5, 10, 25, 50},
			},
			[]string{"event_type"},
		),
		subscriberErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eventstream_subscriber_errors_total",
				Help: "Subscriber failures absorbed by the dispatcher",
			},
			[]string{"event_type"},
		),
		appendTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eventstream_append_total",
				Help: "Total number of append attempts",
			},
			[]string{"event_type", "status"}, // status: success, error
		),
		appendDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "eventstream_append_duration_seconds",
				Help:    "Append latency including flush",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"event_type"},
		),
		replayTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eventstream_replay_total",
				Help: "Total number of replay runs",
			},
			[]string{"status"},
		),
		replayedEventsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "eventstream_replayed_events_total",
				Help: "Events republished by replay",
			},
		),
	}

	for _, c := range []prometheus.Collector{
		m.publishTotal,
		m.publishDuration,
		m.publishSubscribers,
		m.subscriberErrorsTotal,
		m.appendTotal,
		m.appendDuration,
		m.replayTotal,
		m.replayedEventsTotal,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// RecordPublish implements MetricsRecorder.
func (m *PromMetrics) RecordPublish(_ context.Context, eventType string, subscribers int, duration time.Duration) {
	m.publishTotal.WithLabelValues(eventType).Inc()
	m.publishDuration.WithLabelValues(eventType).Observe(duration.Seconds())
	m.publishSubscribers.WithLabelValues(eventType).Observe(float64(subscribers))
}

// RecordSubscriberError implements MetricsRecorder.
func (m *PromMetrics) RecordSubscriberError(_ context.Context, eventType string) {
	m.subscriberErrorsTotal.WithLabelValues(eventType).Inc()
}

// RecordAppend implements MetricsRecorder.
func (m *PromMetrics) RecordAppend(_ context.Context, eventType string, duration time.Duration, err error) {
	m.appendTotal.WithLabelValues(eventType, status(err)).Inc()
	m.appendDuration.WithLabelValues(eventType).Observe(duration.Seconds())
}

// RecordReplay implements MetricsRecorder.
func (m *PromMetrics) RecordReplay(_ context.Context, count int, _ time.Duration, err error) {
	m.replayTotal.WithLabelValues(status(err)).Inc()
	m.replayedEventsTotal.Add(float64(count))
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// PromHandler serves the metrics gathered by g in the Prometheus text format.
func PromHandler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

var _ MetricsRecorder = (*PromMetrics)(nil)
