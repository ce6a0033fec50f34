package eventstream

import (
	"context"
	"errors"

	"github.com/randalmurphal/eventstream/pkg/eventstream/eventlog"
	"github.com/randalmurphal/eventstream/pkg/eventstream/observability"
)

// Replayer republishes every persisted event in log order.
type Replayer struct {
	publisher Publisher
	log       eventlog.Log
	cfg       config
}

// NewReplayer creates a replayer reading log and publishing through p.
// Relevant options: WithReporter, WithMetrics, WithTracing.
func NewReplayer(p Publisher, log eventlog.Log, opts ...Option) *Replayer {
	return &Replayer{
		publisher: p,
		log:       log,
		cfg:       newConfig(opts),
	}
}

// ReplayAll publishes every record in the log, in append order, one at a
// time, and returns how many it published.
//
// Replay is not atomic. If loading fails partway (a *CorruptRecordError, an
// I/O *PersistenceError, or ctx being cancelled), every record before the
// failure has already been delivered, and the returned count says how many.
func (r *Replayer) ReplayAll(ctx context.Context) (int, error) {
	ctx, span := r.cfg.spans.StartReplaySpan(ctx)
	elapsed := observability.TimedOperation()

	count, err := r.replay(ctx)

	r.cfg.metrics.RecordReplay(ctx, count, elapsed(), err)
	r.cfg.spans.EndSpanWithError(span, err)

	var perr *PersistenceError
	if errors.As(err, &perr) {
		r.cfg.reporter.PersistenceFailed(ctx, "load", err)
	}
	r.cfg.reporter.ReplayFinished(ctx, count, err)

	return count, err
}

func (r *Replayer) replay(ctx context.Context) (int, error) {
	it, err := r.log.Load(ctx)
	if err != nil {
		return 0, err
	}
	defer it.Close()

	count := 0
	for it.Next() {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		r.publisher.Publish(ctx, EventFromRecord(it.Record()))
		count++
	}
	return count, it.Err()
}
