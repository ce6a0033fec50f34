package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/eventstream/pkg/eventstream"
	"github.com/randalmurphal/eventstream/pkg/eventstream/eventlog"
)

func newReplayCommand() *cobra.Command {
	var types []string

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay every logged event through a printing subscriber",
		Long: `Replay every logged event, in order, through a dispatcher with a printing
subscriber. With --type only those types get a subscriber; other events are
still published and reported as having no subscribers.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := requireApp()
			if err != nil {
				return err
			}

			if len(types) == 0 {
				if types, err = loggedTypes(cmd.Context(), a.log); err != nil {
					return err
				}
			}

			d := eventstream.NewDispatcher(a.options()...)
			p := &printer{w: cmd.OutOrStdout()}
			for _, t := range types {
				d.Subscribe(t, p)
			}

			count, err := eventstream.NewReplayer(d, a.log, a.options()...).ReplayAll(cmd.Context())
			fmt.Fprintf(cmd.ErrOrStderr(), "replayed %d events\n", count)
			return err
		},
	}

	cmd.Flags().StringSliceVar(&types, "type", nil, "Event types to print (default: every type in the log)")

	return cmd
}

// loggedTypes returns the distinct event types in the log, in first-seen order.
func loggedTypes(ctx context.Context, log eventlog.Log) ([]string, error) {
	it, err := log.Load(ctx)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	seen := make(map[string]bool)
	var types []string
	for it.Next() {
		t := it.Record().Type
		if !seen[t] {
			seen[t] = true
			types = append(types, t)
		}
	}
	// A corrupt record is reported by the replay itself.
	return types, nil
}
