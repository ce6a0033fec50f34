package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/eventstream/pkg/eventstream"
)

func newSendCommand() *cobra.Command {
	var (
		eventType string
		payload   string
		noPersist bool
		quiet     bool
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send one event",
		Long: `Send one event. The event is appended to the log and then delivered to a
subscriber that prints it. With --no-persist the event is only delivered.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := requireApp()
			if err != nil {
				return err
			}

			data, err := parsePayload(payload)
			if err != nil {
				return err
			}

			d := eventstream.NewDispatcher(a.options()...)
			if !quiet {
				d.Subscribe(eventType, &printer{w: cmd.OutOrStdout()})
			}

			if noPersist {
				return eventstream.NewProducer(d).Send(cmd.Context(), eventType, data)
			}
			return eventstream.NewPersistentProducer(d, a.log, a.options()...).Send(cmd.Context(), eventType, data)
		},
	}

	cmd.Flags().StringVar(&eventType, "type", "", "Event type (required)")
	cmd.Flags().StringVar(&payload, "payload", "{}", "Event payload as a JSON object")
	cmd.Flags().BoolVar(&noPersist, "no-persist", false, "Deliver without appending to the log")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "Do not print the delivered event")
	if err := cmd.MarkFlagRequired("type"); err != nil {
		panic(fmt.Sprintf("Failed to mark type as required: %v", err))
	}

	return cmd
}

// parsePayload decodes a JSON object, keeping numbers exact.
func parsePayload(s string) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()

	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("invalid JSON payload: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("invalid JSON payload: trailing data")
	}
	return m, nil
}
