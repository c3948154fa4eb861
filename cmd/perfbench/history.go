package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"perfbench/internal/config"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect and maintain the stored benchmark history",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored benchmark runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(config.Current())
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.Runs(cmd.Context())
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No benchmark history recorded yet.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "TIMESTAMP\tCOMMIT\tPLATFORM\tBENCHMARKS")
		for _, rec := range runs {
			commit := rec.CommitHash
			if len(commit) > 8 {
				commit = commit[:8]
			}
			if commit == "" {
				commit = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s/%s\t%d\n",
				rec.Timestamp.Format(time.RFC3339), commit,
				rec.Platform.OS, rec.Platform.Arch, len(rec.Benchmarks))
		}
		return w.Flush()
	},
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Trim history to the configured retention budget",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings := config.Current()
		store, err := openStore(settings)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Prune(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "History pruned to at most %d runs.\n", settings.HistoryMaxRecords)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyPruneCmd)
}
