package main

import (
	"fmt"
	"log/slog"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"perfbench/internal/config"
	"perfbench/internal/report"
)

var reportPretty bool

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render a report from the most recent recorded run",
	Long: `Loads the newest run from history, renders it in the configured formats
and prints the markdown summary. With --pretty the summary is rendered for
the terminal.`,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().BoolVar(&reportPretty, "pretty", false, "Render the summary with terminal styling")
}

func runReport(cmd *cobra.Command, args []string) error {
	settings := config.Current()

	store, err := openStore(settings)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Runs(cmd.Context())
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		return fmt.Errorf("no benchmark history recorded yet")
	}

	result := resultFromRecord(runs[len(runs)-1])

	reporter := report.NewReporter(reportOptions(settings), nil, slog.Default())
	gen, err := reporter.Generate(cmd.Context(), result, nil)
	if err != nil {
		return err
	}
	for _, f := range gen.Files {
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", f)
	}

	md := report.RenderMarkdown(result, nil)
	if reportPretty {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(100),
		)
		if err == nil {
			if out, err := renderer.Render(md); err == nil {
				fmt.Fprint(cmd.OutOrStdout(), out)
				return nil
			}
		}
	}
	fmt.Fprint(cmd.OutOrStdout(), md)
	return nil
}
