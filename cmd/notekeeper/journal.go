package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/flemzord/notekeeper/pkg/app"
)

func journalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Inspect the operation journal",
	}

	tail := &cobra.Command{
		Use:   "tail",
		Short: "Show the most recent operations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			n, _ := cmd.Flags().GetInt("lines")

			cfg, _, err := app.LoadConfig(cfgPath, "")
			if err != nil {
				return err
			}
			entries, err := app.TailJournal(cmd.Context(), cfg, n)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tOPERATION\tOUTCOME\tBYTES\tFILE\tDIRECTORY")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
					e.Time.Local().Format(time.DateTime), e.Operation, e.Outcome, e.Bytes, e.Filename, e.Directory)
			}
			return w.Flush()
		},
	}
	tail.Flags().IntP("lines", "n", 20, "Number of entries to show")

	prune := &cobra.Command{
		Use:   "prune",
		Short: "Delete entries older than the retention window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			cfg, _, err := app.LoadConfig(cfgPath, "")
			if err != nil {
				return err
			}
			n, err := app.PruneJournal(cmd.Context(), cfg, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entries older than %s\n", n, cfg.Journal.Retention)
			return nil
		},
	}

	cmd.AddCommand(tail, prune)
	return cmd
}
