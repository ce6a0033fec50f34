package eventstream

import (
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/randalmurphal/eventstream/pkg/eventstream/eventlog"
)

// Event is an immutable (type, payload) value.
//
// The payload is copied when the event is built and again on every call to
// Payload, so no subscriber can change what another subscriber sees.
// Payload values are expected to be JSON-like (scalars, maps, slices); values
// behind pointers are shared, not copied.
type Event struct {
	typ       string
	payload   map[string]any
	timestamp time.Time
	id        string
}

// NewEvent builds an event. The payload is deep-copied.
func NewEvent(eventType string, payload map[string]any) (Event, error) {
	if eventType == "" {
		return Event{}, ErrEmptyEventType
	}
	return Event{typ: eventType, payload: clonePayload(payload)}, nil
}

// EventFromRecord builds the event a persisted record describes, keeping its
// timestamp and id.
func EventFromRecord(rec eventlog.Record) Event {
	return Event{
		typ:       rec.Type,
		payload:   clonePayload(rec.Payload),
		timestamp: rec.Timestamp,
		id:        rec.ID,
	}
}

// Type returns the event type.
func (e Event) Type() string {
	return e.typ
}

// Payload returns a copy of the payload. It is never nil.
func (e Event) Payload() map[string]any {
	return clonePayload(e.payload)
}

// Get returns a copy of one payload value.
func (e Event) Get(key string) (any, bool) {
	v, ok := e.payload[key]
	if !ok {
		return nil, false
	}
	return cloneValue(v), true
}

// Timestamp returns when the event was persisted, or the zero time for
// events that were never persisted.
func (e Event) Timestamp() time.Time {
	return e.timestamp
}

// ID returns the persisted event's id, or "" for live-only events.
func (e Event) ID() string {
	return e.id
}

// Record returns the persisted form of the event.
func (e Event) Record() eventlog.Record {
	return eventlog.Record{
		Type:      e.typ,
		Payload:   e.Payload(),
		Timestamp: e.timestamp,
		ID:        e.id,
	}
}

// String formats the event for logs.
func (e Event) String() string {
	return fmt.Sprintf("Event(type=%s, payload=%v)", e.typ, e.payload)
}

// MarshalJSON encodes the event in the log record format.
func (e Event) MarshalJSON() ([]byte, error) {
	type wire struct {
		Type      string         `json:"type"`
		Payload   map[string]any `json:"payload"`
		Timestamp *time.Time     `json:"timestamp,omitempty"`
		ID        string         `json:"id,omitempty"`
	}
	w := wire{Type: e.typ, Payload: e.payload, ID: e.id}
	if w.Payload == nil {
		w.Payload = map[string]any{}
	}
	if !e.timestamp.IsZero() {
		w.Timestamp = &e.timestamp
	}
	return json.Marshal(w)
}

func clonePayload(p map[string]any) map[string]any {
	out := make(map[string]any, len(p))
	for k, v := range p {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case nil, string, bool, json.Number,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return v
	case map[string]any:
		return clonePayload(t)
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = cloneValue(t[i])
		}
		return out
	}
	return cloneReflect(reflect.ValueOf(v)).Interface()
}

// cloneReflect deep-copies maps, slices, and arrays of any element type.
func cloneReflect(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return v
		}
		return cloneReflect(v.Elem())
	case reflect.Map:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), cloneReflect(iter.Value()))
		}
		return out
	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(cloneReflect(v.Index(i)))
		}
		return out
	case reflect.Array:
		out := reflect.New(v.Type()).Elem()
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(cloneReflect(v.Index(i)))
		}
		return out
	default:
		return v
	}
}
