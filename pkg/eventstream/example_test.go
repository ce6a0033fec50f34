package eventstream_test

import (
	"context"
	"fmt"

	"github.com/randalmurphal/eventstream/pkg/eventstream"
	"github.com/randalmurphal/eventstream/pkg/eventstream/eventlog"
	"github.com/randalmurphal/eventstream/pkg/eventstream/observability"
)

func ExampleDispatcher() {
	ctx := context.Background()
	d := eventstream.NewDispatcher(eventstream.WithReporter(observability.NoopReporter{}))

	d.SubscribeFunc("vulnerability", func(ctx context.Context, evt eventstream.Event) error {
		sev, _ := evt.Get("severity")
		fmt.Println("logged", sev)
		return nil
	})
	d.SubscribeFunc("vulnerability", func(ctx context.Context, evt eventstream.Event) error {
		if sev, _ := evt.Get("severity"); sev == "critical" {
			fmt.Println("ALERT")
		}
		return nil
	})

	p := eventstream.NewProducer(d)
	_ = p.Send(ctx, "vulnerability", map[string]any{"severity": "low"})
	_ = p.Send(ctx, "vulnerability", map[string]any{"severity": "critical"})

	// Output:
	// logged low
	// logged critical
	// ALERT
}

func ExampleReplayer() {
	ctx := context.Background()
	log := eventlog.NewMemoryLog()

	d := eventstream.NewDispatcher(eventstream.WithReporter(observability.NoopReporter{}))
	p := eventstream.NewPersistentProducer(d, log)
	_ = p.Send(ctx, "deploy", map[string]any{"service": "api"})
	_ = p.Send(ctx, "deploy", map[string]any{"service": "worker"})

	d.SubscribeFunc("deploy", func(ctx context.Context, evt eventstream.Event) error {
		svc, _ := evt.Get("service")
		fmt.Println("replayed", svc)
		return nil
	})

	n, err := eventstream.NewReplayer(d, log).ReplayAll(ctx)
	fmt.Println(n, err)

	// Output:
	// replayed api
	// replayed worker
	// 2 <nil>
}
