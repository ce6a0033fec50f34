package eventstream

import "context"

// Subscriber handles events of the type it was registered for.
// A returned error is reported and does not stop delivery to other subscribers.
type Subscriber interface {
	Handle(ctx context.Context, evt Event) error
}

// SubscriberFunc adapts a function to the Subscriber interface.
type SubscriberFunc func(ctx context.Context, evt Event) error

// Handle implements Subscriber.
func (f SubscriberFunc) Handle(ctx context.Context, evt Event) error {
	return f(ctx, evt)
}

// NamedSubscriber is implemented by subscribers that want to be identified
// by name in failure reports.
type NamedSubscriber interface {
	Subscriber
	SubscriberName() string
}

// WithName attaches a report name to a subscriber.
func WithName(name string, sub Subscriber) Subscriber {
	return &namedSubscriber{Subscriber: sub, name: name}
}

type namedSubscriber struct {
	Subscriber
	name string
}

func (n *namedSubscriber) SubscriberName() string {
	return n.name
}

func subscriberName(sub Subscriber) string {
	if n, ok := sub.(NamedSubscriber); ok {
		return n.SubscriberName()
	}
	return ""
}
