package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"perfbench/internal/config"
	"perfbench/internal/ui"
)

var trendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Browse benchmark history interactively",
	Long:  `Opens a terminal UI over the stored runs with per-benchmark duration trends.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(config.Current())
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.Runs(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to load history: %w", err)
		}
		return ui.StartTrend(runs)
	},
}

func init() {
	rootCmd.AddCommand(trendCmd)
}
