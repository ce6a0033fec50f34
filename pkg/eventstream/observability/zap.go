package observability

import (
	"context"

	"go.uber.org/zap"
)

// ZapReporter reports through a zap.Logger.
type ZapReporter struct {
	logger *zap.Logger
}

// NewZapReporter returns a Reporter writing to logger, or a no-op zap logger
// when logger is nil.
func NewZapReporter(logger *zap.Logger) *ZapReporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapReporter{logger: logger}
}

// NoSubscribers implements Reporter.
func (r *ZapReporter) NoSubscribers(_ context.Context, eventType string) {
	r.logger.Info("no subscribers for event", zap.String("event_type", eventType))
}

// SubscriberFailed implements Reporter.
func (r *ZapReporter) SubscriberFailed(_ context.Context, eventType string, position int, name string, err error) {
	fields := []zap.Field{
		zap.String("event_type", eventType),
		zap.Int("position", position),
		zap.Error(err),
	}
	if name != "" {
		fields = append(fields, zap.String("subscriber", name))
	}
	r.logger.Warn("subscriber failed", fields...)
}

// PersistenceFailed implements Reporter.
func (r *ZapReporter) PersistenceFailed(_ context.Context, op string, err error) {
	r.logger.Error("persistence failed", zap.String("operation", op), zap.Error(err))
}

// ReplayFinished implements Reporter.
func (r *ZapReporter) ReplayFinished(_ context.Context, count int, err error) {
	if err != nil {
		r.logger.Error("replay stopped", zap.Int("events_replayed", count), zap.Error(err))
		return
	}
	r.logger.Info("replay completed", zap.Int("events_replayed", count))
}

var _ Reporter = (*ZapReporter)(nil)
