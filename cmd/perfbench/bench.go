package main

import (
	"fmt"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"perfbench/internal/benchmark"
	"perfbench/internal/config"
	"perfbench/internal/history"
	"perfbench/internal/regression"
	"perfbench/internal/report"
	"perfbench/internal/ui"
)

var (
	benchName        string
	benchSave        bool
	benchCompare     bool
	benchReport      bool
	benchMaxDuration time.Duration
	benchMaxMemory   int64
	benchMaxCPU      float64
)

var benchCmd = &cobra.Command{
	Use:   "bench [packages]",
	Short: "Run Go benchmarks and track performance over time",
	Long: `Executes 'go test -bench' for the specified packages (defaulting to ./...)
and feeds the results through the harness pipeline: they are recorded to
history, compared against the stored baseline and rendered as reports.`,
	RunE: runBench,
}

func init() {
	rootCmd.AddCommand(benchCmd)
	benchCmd.Flags().StringVar(&benchName, "name", "go-bench", "Run name used in reports and history")
	benchCmd.Flags().BoolVar(&benchSave, "save", true, "Record results to history")
	benchCmd.Flags().BoolVar(&benchCompare, "compare", true, "Compare against stored baseline")
	benchCmd.Flags().BoolVar(&benchReport, "report", false, "Write report artifacts")
	benchCmd.Flags().DurationVar(&benchMaxDuration, "max-duration", 0, "Fail benchmarks slower than this (0 = unbounded)")
	benchCmd.Flags().Int64Var(&benchMaxMemory, "max-memory", 0, "Fail benchmarks allocating more than this many bytes (0 = unbounded)")
	benchCmd.Flags().Float64Var(&benchMaxCPU, "max-cpu", 0, "Fail benchmarks above this CPU percentage (0 = unbounded)")
}

func runBench(cmd *cobra.Command, args []string) error {
	settings := config.Current()
	ctx := cmd.Context()

	runner := benchmark.NewGoBenchRunner()
	benchmarks, err := runner.Run(ctx, args...)
	if err != nil {
		return err
	}
	if len(benchmarks) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No benchmarks found.")
		return nil
	}

	// Configured ceilings pick up the active profile's slack, so CI runs get
	// the looser variant of the same flags.
	if thresholds := config.ActiveProfile().ScaleThresholds(benchThresholds()); thresholds != nil {
		for i := range benchmarks {
			benchmarks[i].Thresholds = thresholds
		}
	}

	result := &benchmark.TestResult{
		Name:       benchName,
		Timestamp:  time.Now(),
		Benchmarks: benchmarks,
		Summary:    benchmark.Summarize(benchmarks),
	}
	result.Passed = result.Summary.FailedIterations == 0

	store, err := openStore(settings)
	if err != nil {
		return err
	}
	defer store.Close()

	var regReport *regression.Report
	if benchCompare {
		detector := regression.NewDetector(store, regressionConfig(settings), slog.Default())
		regReport, err = detector.Analyze(ctx, benchmarks)
		if err != nil {
			return err
		}
	}

	if benchSave {
		if err := store.Record(ctx, history.NewRecord(result, version)); err != nil {
			return fmt.Errorf("failed to record results: %w", err)
		}
	}

	printBenchmarks(cmd, benchmarks, regReport)

	if regReport != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n", regReport.Summary)
	}

	if benchReport {
		reporter := report.NewReporter(reportOptions(settings), alertChannels(settings), slog.Default())
		gen, err := reporter.Generate(ctx, result, regReport)
		if err != nil {
			return err
		}
		for _, f := range gen.Files {
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", f)
		}
	}

	if regReport != nil && regReport.HasRegressions {
		return fmt.Errorf("performance regressions detected: %s", regReport.Summary)
	}
	return nil
}

// benchThresholds builds the ceilings from the command flags, or nil when
// none were given.
func benchThresholds() *benchmark.Thresholds {
	if benchMaxDuration <= 0 && benchMaxMemory <= 0 && benchMaxCPU <= 0 {
		return nil
	}
	t := &benchmark.Thresholds{}
	if benchMaxDuration > 0 {
		t.MaxDuration = &benchMaxDuration
	}
	if benchMaxMemory > 0 {
		t.MaxMemoryDelta = &benchMaxMemory
	}
	if benchMaxCPU > 0 {
		t.MaxCPUPercent = &benchMaxCPU
	}
	return t
}

func regressionConfig(s config.Settings) regression.Config {
	cfg := regression.DefaultConfig()
	cfg.MinSamples = s.RegressionMinSamples
	cfg.HistoryWindow = s.RegressionHistoryWindow
	return cfg
}

func reportOptions(s config.Settings) report.Options {
	return report.Options{
		OutputDir: s.ReportDir,
		Markdown:  s.ReportMarkdown,
		JSON:      s.ReportJSON,
		HTML:      s.ReportHTML,
		CSV:       s.ReportCSV,
	}
}

func alertChannels(s config.Settings) []report.AlertChannel {
	channels := []report.AlertChannel{report.NewConsoleChannel(nil)}
	if s.AlertsFile != "" {
		channels = append(channels, report.NewFileChannel(s.AlertsFile))
	}
	if s.SlackWebhook != "" {
		channels = append(channels, report.NewSlackChannel(s.SlackWebhook))
	}
	return channels
}

func printBenchmarks(cmd *cobra.Command, benchmarks []benchmark.Benchmark, reg *regression.Report) {
	deltas := make(map[string]regression.Analysis)
	if reg != nil {
		for _, a := range reg.Analyses {
			deltas[a.Name] = a
		}
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "BENCHMARK\tDURATION\tMEMORY\tDIFF %\tSTATUS")
	for _, b := range benchmarks {
		diff, status := "-", ui.Verdict(b.Passed())
		if a, ok := deltas[b.Name]; ok {
			diff = fmt.Sprintf("%+.2f%%", a.DurationDeltaPct)
			if a.Severity != regression.SeverityNone {
				status = fmt.Sprintf("REGRESSED (%s)", a.Severity)
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%d B\t%s\t%s\n",
			b.Name, b.Sample.Duration, b.Sample.MemoryDelta, diff, status)
	}
	w.Flush()
}
