package main

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func statsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show memory statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			stats, err := app.Memory.GetStats(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load stats: %w", err)
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.SetStyle(table.StyleRounded)
			t.AppendHeader(table.Row{"Collection", "Count"})
			t.AppendRow(table.Row{"opportunities", stats.OpportunitiesStored})
			t.AppendRow(table.Row{"interactions", stats.InteractionsRecorded})
			t.AppendRow(table.Row{"preferences", stats.PreferencesLearned})
			t.Render()
			return nil
		},
	}
}
