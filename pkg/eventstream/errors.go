package eventstream

import (
	"errors"
	"fmt"

	"github.com/randalmurphal/eventstream/pkg/eventstream/eventlog"
)

// ErrEmptyEventType indicates an event was built without a type.
var ErrEmptyEventType = errors.New("event type is empty")

// PersistenceError is an I/O failure against the event log.
// It is always returned to the caller of Send, Load, or ReplayAll.
type PersistenceError = eventlog.PersistenceError

// CorruptRecordError is an undecodable record met during replay.
type CorruptRecordError = eventlog.CorruptRecordError

// SubscriberError is a failure returned or raised by one subscriber. The
// dispatcher hands it to the Reporter and never returns it from Publish.
type SubscriberError struct {
	// EventType is the type of the event being delivered.
	EventType string
	// Position is the subscriber's 0-based registration index for EventType.
	Position int
	// Name is the subscriber's name, if it implements NamedSubscriber.
	Name string
	// Err is the returned error, or the recovered panic value as an error.
	Err error
	// Panic is true when the subscriber panicked.
	Panic bool
	// Stack is the goroutine stack captured at the panic.
	Stack string
}

// Error implements the error interface.
func (e *SubscriberError) Error() string {
	who := fmt.Sprintf("#%d", e.Position)
	if e.Name != "" {
		who = fmt.Sprintf("%s (#%d)", e.Name, e.Position)
	}
	if e.Panic {
		return fmt.Sprintf("subscriber %s panicked handling %s: %v", who, e.EventType, e.Err)
	}
	return fmt.Sprintf("subscriber %s failed handling %s: %v", who, e.EventType, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *SubscriberError) Unwrap() error {
	return e.Err
}
