package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// NoopReporter discards every report.
type NoopReporter struct{}

var _ Reporter = NoopReporter{}

func (NoopReporter) NoSubscribers(_ context.Context, _ string)                              {}
func (NoopReporter) SubscriberFailed(_ context.Context, _ string, _ int, _ string, _ error) {}
func (NoopReporter) PersistenceFailed(_ context.Context, _ string, _ error)                 {}
func (NoopReporter) ReplayFinished(_ context.Context, _ int, _ error)                       {}

// NoopMetrics is a MetricsRecorder that does nothing.
type NoopMetrics struct{}

var _ MetricsRecorder = NoopMetrics{}

func (NoopMetrics) RecordPublish(_ context.Context, _ string, _ int, _ time.Duration)  {}
func (NoopMetrics) RecordSubscriberError(_ context.Context, _ string)                  {}
func (NoopMetrics) RecordAppend(_ context.Context, _ string, _ time.Duration, _ error) {}
func (NoopMetrics) RecordReplay(_ context.Context, _ int, _ time.Duration, _ error)    {}

// NoopSpanManager is a SpanManager that does nothing.
type NoopSpanManager struct{}

var _ SpanManager = NoopSpanManager{}

var noopSpan = noop.Span{}

// StartPublishSpan returns the context unchanged and a no-op span.
func (NoopSpanManager) StartPublishSpan(ctx context.Context, _ string) (context.Context, trace.Span) {
	return ctx, noopSpan
}

// StartAppendSpan returns the context unchanged and a no-op span.
func (NoopSpanManager) StartAppendSpan(ctx context.Context, _ string) (context.Context, trace.Span) {
	return ctx, noopSpan
}

// StartReplaySpan returns the context unchanged and a no-op span.
func (NoopSpanManager) StartReplaySpan(ctx context.Context) (context.Context, trace.Span) {
	return ctx, noopSpan
}

func (NoopSpanManager) EndSpanWithError(_ trace.Span, _ error)                            {}
func (NoopSpanManager) AddSpanEvent(_ context.Context, _ string, _ ...attribute.KeyValue) {}
