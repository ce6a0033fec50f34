package eventstream

import (
	"context"

	"github.com/randalmurphal/eventstream/pkg/eventstream/eventlog"
	"github.com/randalmurphal/eventstream/pkg/eventstream/observability"
	"github.com/randalmurphal/eventstream/pkg/eventstream/retry"
)

// Producer publishes events directly, without persistence. Delivery is
// at-most-once within the process.
type Producer struct {
	publisher Publisher
}

// NewProducer creates a producer that publishes through p.
func NewProducer(p Publisher) *Producer {
	return &Producer{publisher: p}
}

// Send builds an event and publishes it. The only error is ErrEmptyEventType;
// subscriber failures are reported by the publisher, not returned.
func (p *Producer) Send(ctx context.Context, eventType string, payload map[string]any) error {
	evt, err := NewEvent(eventType, payload)
	if err != nil {
		return err
	}
	p.publisher.Publish(ctx, evt)
	return nil
}

// PersistentProducer appends every event to a log before publishing it.
// An event whose append failed is never published.
type PersistentProducer struct {
	publisher Publisher
	log       eventlog.Log
	cfg       config
}

// NewPersistentProducer creates a producer that appends to log and then
// publishes through p. Relevant options: WithClock, WithIDGenerator,
// WithAppendRetry, WithReporter, WithMetrics, WithTracing.
func NewPersistentProducer(p Publisher, log eventlog.Log, opts ...Option) *PersistentProducer {
	return &PersistentProducer{
		publisher: p,
		log:       log,
		cfg:       newConfig(opts),
	}
}

// Send stamps the event with the current UTC time and a new id, appends it,
// and publishes it once the append has been committed. The published payload
// is the persisted one, so numbers arrive as json.Number both live and on
// replay.
//
// If the append fails the error is reported and returned and nothing is
// published. I/O failures surface as *PersistenceError (possibly inside a
// *retry.CategorizedError when retries are configured; errors.As finds it).
func (p *PersistentProducer) Send(ctx context.Context, eventType string, payload map[string]any) error {
	evt, err := NewEvent(eventType, payload)
	if err != nil {
		return err
	}
	evt.timestamp = p.cfg.clock().UTC()
	evt.id = p.cfg.newID()

	// Deliver exactly what a later replay will deliver.
	rec, err := eventlog.Canonical(evt.Record())
	if err == nil {
		err = p.append(ctx, rec)
	}
	if err != nil {
		p.cfg.reporter.PersistenceFailed(ctx, "append", err)
		return err
	}

	p.publisher.Publish(ctx, EventFromRecord(rec))
	return nil
}

func (p *PersistentProducer) append(ctx context.Context, rec eventlog.Record) error {
	spanCtx, span := p.cfg.spans.StartAppendSpan(ctx, rec.Type)
	elapsed := observability.TimedOperation()

	var err error
	if p.cfg.retry.MaxAttempts <= 1 {
		err = p.log.Append(spanCtx, rec)
	} else {
		result := retry.Do(spanCtx, p.cfg.retry, func(ctx context.Context) error {
			return p.log.Append(ctx, rec)
		})
		err = result.Err
		if result.Attempts > 1 {
			p.cfg.spans.AddSpanEvent(spanCtx, "append.retried")
		}
	}

	p.cfg.metrics.RecordAppend(ctx, rec.Type, elapsed(), err)
	p.cfg.spans.EndSpanWithError(span, err)
	return err
}
