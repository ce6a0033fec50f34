/*
Package eventstream provides in-process publish/subscribe with a durable,
replayable event log.

# Overview

Producers emit typed events, a Dispatcher fans them out to the subscribers
registered for the event's type, and an eventlog.Log persists events so a
Replayer can deliver them again after a restart.

	producer  ──► [eventlog.Log.Append] ──► Dispatcher.Publish ──► subscribers
	replayer  ──► eventlog.Log.Load ──────► Dispatcher.Publish ──► subscribers

Every dependency is passed explicitly; there is no package-level bus.

# Basic Usage

	d := eventstream.NewDispatcher()

	d.SubscribeFunc("vulnerability", func(ctx context.Context, evt eventstream.Event) error {
	    fmt.Println(evt.Type(), evt.Payload())
	    return nil
	})

	producer := eventstream.NewProducer(d)
	err := producer.Send(ctx, "vulnerability", map[string]any{"id": 1, "severity": "low"})

# Persistence and Replay

PersistentProducer appends before it publishes, and publishes only when the
append succeeded:

	log, err := eventlog.OpenFileLog("events.log")
	if err != nil {
	    return err
	}
	defer log.Close()

	producer := eventstream.NewPersistentProducer(d, log)
	if err := producer.Send(ctx, "heartbeat", map[string]any{"status": "ok"}); err != nil {
	    // nothing was published
	}

	// After a restart:
	n, err := eventstream.NewReplayer(d, log).ReplayAll(ctx)

# Delivery Guarantees

Publish is synchronous. Subscribers for one publish call run one after
another, in registration order, on the caller's goroutine, so every
subscriber observes events of a type in publish order. A subscriber that
blocks blocks the publisher; there is no per-subscriber timeout.

A subscriber error or panic never reaches the publisher. It is wrapped in a
*SubscriberError, passed to the Reporter, and delivery continues with the
next subscriber. Publishing a type with no subscribers is reported, not an
error.

Subscriptions apply to future publishes only. Nothing is buffered for late
subscribers; use a Replayer for history.

# Failure Reporting

Conditions that are absorbed rather than returned go to an
observability.Reporter (slog by default):

	d := eventstream.NewDispatcher(
	    eventstream.WithReporter(observability.NewZapReporter(zapLogger)),
	    eventstream.WithMetrics(observability.NewMetricsRecorder()),
	    eventstream.WithTracing(observability.NewSpanManager()),
	)

Persistence failures are both reported and returned.

# Replay Semantics

ReplayAll publishes records in log order and returns how many it published.
If the log holds a corrupt record, every record before it has already been
published when ReplayAll returns the *CorruptRecordError; partial replay is
visible through the count. Corrupt records are never skipped.
*/
package eventstream
