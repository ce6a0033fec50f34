package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newDumpCommand() *cobra.Command {
	var pretty bool

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print logged records without dispatching them",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := requireApp()
			if err != nil {
				return err
			}

			it, err := a.log.Load(cmd.Context())
			if err != nil {
				return err
			}
			defer it.Close()

			out := cmd.OutOrStdout()
			for it.Next() {
				var data []byte
				if pretty {
					data, err = json.MarshalIndent(it.Record(), "", "  ")
				} else {
					data, err = json.Marshal(it.Record())
				}
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
			}
			return it.Err()
		},
	}

	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty print records")

	return cmd
}
