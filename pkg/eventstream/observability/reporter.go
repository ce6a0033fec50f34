package observability

import (
	"context"
	"log/slog"
)

// Reporter receives conditions the dispatcher and producers absorb instead of
// returning. Implementations must be safe for concurrent use and must not panic.
type Reporter interface {
	// NoSubscribers is called once per publish that found no subscribers.
	NoSubscribers(ctx context.Context, eventType string)

	// SubscriberFailed is called for every subscriber error or panic.
	// position is the subscriber's 0-based registration index for the type.
	SubscriberFailed(ctx context.Context, eventType string, position int, name string, err error)

	// PersistenceFailed is called when an append or load fails.
	PersistenceFailed(ctx context.Context, op string, err error)

	// ReplayFinished is called at the end of every replay, with the number of
	// events published and the error that stopped it, if any.
	ReplayFinished(ctx context.Context, count int, err error)
}

// SlogReporter reports through a slog.Logger.
type SlogReporter struct {
	logger *slog.Logger
}

// NewSlogReporter returns a Reporter writing to logger, or to slog.Default()
// when logger is nil.
func NewSlogReporter(logger *slog.Logger) *SlogReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogReporter{logger: logger}
}

// NoSubscribers implements Reporter.
func (r *SlogReporter) NoSubscribers(_ context.Context, eventType string) {
	LogNoSubscribers(r.logger, eventType)
}

// SubscriberFailed implements Reporter.
func (r *SlogReporter) SubscriberFailed(_ context.Context, eventType string, position int, name string, err error) {
	LogSubscriberError(r.logger, eventType, position, name, err)
}

// PersistenceFailed implements Reporter.
func (r *SlogReporter) PersistenceFailed(_ context.Context, op string, err error) {
	LogPersistenceError(r.logger, op, err)
}

// ReplayFinished implements Reporter.
func (r *SlogReporter) ReplayFinished(_ context.Context, count int, err error) {
	if err != nil {
		LogReplayError(r.logger, count, err)
		return
	}
	LogReplayComplete(r.logger, count)
}

var _ Reporter = (*SlogReporter)(nil)
