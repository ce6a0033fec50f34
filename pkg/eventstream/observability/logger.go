// Package observability provides the reporting hook, metrics, and tracing
// used by eventstream.
//
// Features:
//   - Reporter: the hook for no-subscriber notices, subscriber failures, and
//     persistence failures (slog by default, zap, or no-op)
//   - Metrics via OpenTelemetry or Prometheus
//   - Tracing via OpenTelemetry
//
// All features have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds the event type to a logger.
func EnrichLogger(logger *slog.Logger, eventType string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(slog.String("event_type", eventType))
}

// LogNoSubscribers logs a publish that reached no subscribers.
func LogNoSubscribers(logger *slog.Logger, eventType string) {
	if logger == nil {
		return
	}
	EnrichLogger(logger, eventType).Info("no subscribers for event")
}

// LogSubscriberError logs a subscriber failure absorbed by the dispatcher.
func LogSubscriberError(logger *slog.Logger, eventType string, position int, name string, err error) {
	if logger == nil {
		return
	}
	attrs := []any{
		slog.Int("position", position),
		slog.String("error", err.Error()),
	}
	if name != "" {
		attrs = append(attrs, slog.String("subscriber", name))
	}
	EnrichLogger(logger, eventType).Warn("subscriber failed", attrs...)
}

// LogPersistenceError logs a failed log operation.
func LogPersistenceError(logger *slog.Logger, op string, err error) {
	if logger == nil {
		return
	}
	logger.Error("persistence failed",
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
}

// LogReplayComplete logs a replay that reached the end of the log.
func LogReplayComplete(logger *slog.Logger, count int) {
	if logger == nil {
		return
	}
	logger.Info("replay completed",
		slog.Int("events_replayed", count),
	)
}

// LogReplayError logs a replay that stopped early. count events were
// published before the failure.
func LogReplayError(logger *slog.Logger, count int, err error) {
	if logger == nil {
		return
	}
	logger.Error("replay stopped",
		slog.Int("events_replayed", count),
		slog.String("error", err.Error()),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time.
func TimedOperation() func() time.Duration {
	start := time.Now()
	return func() time.Duration {
		return time.Since(start)
	}
}
