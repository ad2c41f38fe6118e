package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newIngestCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <file>",
		Short: "Load a SWIFT codes CSV export into the configured store and exit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.close()

			stats, err := a.ingester().IngestFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "processed=%d skipped=%d\n", stats.Processed, stats.Skipped)
			return nil
		},
	}
}
