package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// setupTracingTest creates a test tracer provider with an in-memory span recorder.
func setupTracingTest(t *testing.T) (*tracetest.InMemoryExporter, func()) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
	)

	originalProvider := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)

	// Update the package-level tracer
	tracer = otel.Tracer("eventstream")

	cleanup := func() {
		otel.SetTracerProvider(originalProvider)
		if err := tp.Shutdown(context.Background()); err != nil {
			t.Logf("Error shutting down tracer provider: %v", err)
		}
	}

	return exporter, cleanup
}

func spanAttr(s tracetest.SpanStub, key attribute.Key) (attribute.Value, bool) {
	for _, kv := range s.Attributes {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestSpanManager(t *testing.T) {
	exporter, cleanup := setupTracingTest(t)
	defer cleanup()

	sm := NewSpanManager()

	t.Run("publish span carries event type", func(t *testing.T) {
		exporter.Reset()
		_, span := sm.StartPublishSpan(context.Background(), "vulnerability")
		sm.EndSpanWithError(span, nil)

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)
		assert.Equal(t, "eventstream.publish", spans[0].Name)
		assert.Equal(t, codes.Ok, spans[0].Status.Code)
		v, ok := spanAttr(spans[0], "event.type")
		require.True(t, ok)
		assert.Equal(t, "vulnerability", v.AsString())
	})

	t.Run("append span records error", func(t *testing.T) {
		exporter.Reset()
		_, span := sm.StartAppendSpan(context.Background(), "a")
		sm.EndSpanWithError(span, errors.New("disk full"))

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)
		assert.Equal(t, "eventstream.append", spans[0].Name)
		assert.Equal(t, codes.Error, spans[0].Status.Code)
		assert.Equal(t, "disk full", spans[0].Status.Description)
		require.NotEmpty(t, spans[0].Events)
		assert.Equal(t, "exception", spans[0].Events[0].Name)
	})

	t.Run("publish spans nest under replay", func(t *testing.T) {
		exporter.Reset()
		ctx, replay := sm.StartReplaySpan(context.Background())
		_, publish := sm.StartPublishSpan(ctx, "a")
		sm.EndSpanWithError(publish, nil)
		sm.EndSpanWithError(replay, nil)

		spans := exporter.GetSpans()
		require.Len(t, spans, 2)
		assert.Equal(t, "eventstream.publish", spans[0].Name)
		assert.Equal(t, "eventstream.replay", spans[1].Name)
		assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())
	})

	t.Run("span events", func(t *testing.T) {
		exporter.Reset()
		ctx, span := sm.StartPublishSpan(context.Background(), "a")
		sm.AddSpanEvent(ctx, "subscriber.failed", attribute.Int("subscriber.position", 1))
		sm.EndSpanWithError(span, nil)

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)
		require.Len(t, spans[0].Events, 1)
		assert.Equal(t, "subscriber.failed", spans[0].Events[0].Name)
	})

	t.Run("nil span and non-recording context", func(t *testing.T) {
		assert.NotPanics(t, func() {
			sm.EndSpanWithError(nil, errors.New("x"))
			sm.AddSpanEvent(context.Background(), "ignored")
		})
	})
}
