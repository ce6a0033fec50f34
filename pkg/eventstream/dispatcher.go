package eventstream

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"go.opentelemetry.io/otel/attribute"

	"github.com/randalmurphal/eventstream/pkg/eventstream/observability"
)

// Publisher delivers events. Dispatcher is the standard implementation.
type Publisher interface {
	Publish(ctx context.Context, evt Event)
}

// Dispatcher fans events out to the subscribers registered for their type.
// It is safe for concurrent use.
type Dispatcher struct {
	cfg config

	mu   sync.RWMutex
	subs map[string][]Subscriber // event type -> subscribers in registration order
}

// NewDispatcher creates a dispatcher with no subscribers.
func NewDispatcher(opts ...Option) *Dispatcher {
	return &Dispatcher{
		cfg:  newConfig(opts),
		subs: make(map[string][]Subscriber),
	}
}

// Subscribe registers sub for eventType. Registering the same subscriber
// twice delivers each event to it twice. The registration affects later
// Publish calls only.
//
// Subscribe panics if eventType is empty or sub is nil.
func (d *Dispatcher) Subscribe(eventType string, sub Subscriber) {
	if eventType == "" {
		panic("eventstream: Subscribe with empty event type")
	}
	if sub == nil {
		panic("eventstream: Subscribe with nil subscriber")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.subs[eventType] = append(d.subs[eventType], sub)
}

// SubscribeFunc registers fn for eventType.
func (d *Dispatcher) SubscribeFunc(eventType string, fn func(ctx context.Context, evt Event) error) {
	if fn == nil {
		panic("eventstream: SubscribeFunc with nil function")
	}
	d.Subscribe(eventType, SubscriberFunc(fn))
}

// Subscribers returns the number of registrations for eventType.
func (d *Dispatcher) Subscribers(eventType string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.subs[eventType])
}

// Publish delivers evt to every subscriber registered for its type when the
// call starts, one at a time, in registration order. It returns after every
// subscriber has finished. Subscriber failures are reported, never returned.
func (d *Dispatcher) Publish(ctx context.Context, evt Event) {
	// Registrations only ever append, so this prefix stays stable after the
	// lock is released. Subscribers may call Subscribe without deadlocking.
	d.mu.RLock()
	subs := d.subs[evt.Type()]
	d.mu.RUnlock()

	ctx, span := d.cfg.spans.StartPublishSpan(ctx, evt.Type())
	defer d.cfg.spans.EndSpanWithError(span, nil)
	elapsed := observability.TimedOperation()

	if len(subs) == 0 {
		d.cfg.reporter.NoSubscribers(ctx, evt.Type())
		d.cfg.metrics.RecordPublish(ctx, evt.Type(), 0, elapsed())
		return
	}

	for i, sub := range subs {
		serr := d.deliver(ctx, i, sub, evt)
		if serr == nil {
			continue
		}
		d.cfg.metrics.RecordSubscriberError(ctx, evt.Type())
		d.cfg.spans.AddSpanEvent(ctx, "subscriber.failed",
			attribute.Int("subscriber.position", i),
			attribute.Bool("subscriber.panic", serr.Panic),
		)
		d.cfg.reporter.SubscriberFailed(ctx, evt.Type(), i, serr.Name, serr)
	}

	d.cfg.metrics.RecordPublish(ctx, evt.Type(), len(subs), elapsed())
}

// deliver runs one subscriber, converting an error or panic into a SubscriberError.
func (d *Dispatcher) deliver(ctx context.Context, position int, sub Subscriber, evt Event) (serr *SubscriberError) {
	defer func() {
		if r := recover(); r != nil {
			err, ok := r.(error)
			if !ok {
				err = fmt.Errorf("%v", r)
			}
			serr = &SubscriberError{
				EventType: evt.Type(),
				Position:  position,
				Name:      subscriberName(sub),
				Err:       err,
				Panic:     true,
				Stack:     string(debug.Stack()),
			}
		}
	}()

	if err := sub.Handle(ctx, evt); err != nil {
		return &SubscriberError{
			EventType: evt.Type(),
			Position:  position,
			Name:      subscriberName(sub),
			Err:       err,
		}
	}
	return nil
}

var _ Publisher = (*Dispatcher)(nil)
