package eventstream_test

import (
	"context"
	"sync"

	"github.com/randalmurphal/eventstream/pkg/eventstream"
	"github.com/randalmurphal/eventstream/pkg/eventstream/eventlog"
)

// Test doubles shared across the package tests.

type subscriberFailure struct {
	EventType string
	Position  int
	Name      string
	Err       error
}

type persistenceFailure struct {
	Op  string
	Err error
}

type replayResult struct {
	Count int
	Err   error
}

// recordingReporter captures every report for later assertions.
type recordingReporter struct {
	mu          sync.Mutex
	noSubs      []string
	failures    []subscriberFailure
	persistence []persistenceFailure
	replays     []replayResult
}

func (r *recordingReporter) NoSubscribers(ctx context.Context, eventType string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.noSubs = append(r.noSubs, eventType)
}

func (r *recordingReporter) SubscriberFailed(ctx context.Context, eventType string, position int, name string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, subscriberFailure{eventType, position, name, err})
}

func (r *recordingReporter) PersistenceFailed(ctx context.Context, op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.persistence = append(r.persistence, persistenceFailure{op, err})
}

func (r *recordingReporter) ReplayFinished(ctx context.Context, count int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replays = append(r.replays, replayResult{count, err})
}

func (r *recordingReporter) NoSubscriberReports() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.noSubs...)
}

func (r *recordingReporter) Failures() []subscriberFailure {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]subscriberFailure(nil), r.failures...)
}

func (r *recordingReporter) PersistenceFailures() []persistenceFailure {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]persistenceFailure(nil), r.persistence...)
}

func (r *recordingReporter) Replays() []replayResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]replayResult(nil), r.replays...)
}

// collector records the events it receives.
type collector struct {
	mu     sync.Mutex
	events []eventstream.Event
}

func (c *collector) Handle(ctx context.Context, evt eventstream.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, evt)
	return nil
}

func (c *collector) Events() []eventstream.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]eventstream.Event(nil), c.events...)
}

// flakyLog fails the first failures appends with err, then delegates.
type flakyLog struct {
	eventlog.Log

	mu       sync.Mutex
	failures int
	err      error
	attempts int
}

func (f *flakyLog) Append(ctx context.Context, rec eventlog.Record) error {
	f.mu.Lock()
	f.attempts++
	fail := f.failures > 0
	if fail {
		f.failures--
	}
	f.mu.Unlock()

	if fail {
		return &eventlog.PersistenceError{Op: "append", Backend: "flaky", Err: f.err}
	}
	return f.Log.Append(ctx, rec)
}

func (f *flakyLog) Attempts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attempts
}

// brokenLog fails every Load.
type brokenLog struct {
	eventlog.Log
	err error
}

func (b *brokenLog) Load(ctx context.Context) (eventlog.Iterator, error) {
	return nil, &eventlog.PersistenceError{Op: "load", Backend: "broken", Err: b.err}
}

func mustEvent(eventType string, payload map[string]any) eventstream.Event {
	evt, err := eventstream.NewEvent(eventType, payload)
	if err != nil {
		panic(err)
	}
	return evt
}

func eventTypes(events []eventstream.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Type()
	}
	return out
}
