package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"perfbench/internal/benchmark"
	"perfbench/internal/config"
	"perfbench/internal/history"
	"perfbench/internal/telemetry"
)

const version = "0.1.0"

var exit = os.Exit
var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "perfbench",
	Short: "Performance measurement and regression tracking harness",
	Long: `perfbench measures the wall time, heap usage and CPU load of benchmarks,
stores every run in a history backend and flags statistically meaningful
regressions against the accumulated baseline.`,
	Version:       version,
	SilenceErrors: true,
}

// Execute runs the CLI. Called once from main. Interrupts cancel the
// command context so long-running commands can shut down cleanly.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./perfbench.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().String("history-backend", "", "History backend: file, sqlite or postgres")
	rootCmd.PersistentFlags().String("history-dir", "", "Directory for the file history backend")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("history.backend", rootCmd.PersistentFlags().Lookup("history-backend"))
	viper.BindPFlag("history.dir", rootCmd.PersistentFlags().Lookup("history-dir"))
}

func initConfig() {
	if err := config.Load(cfgFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load configuration: %v\n", err)
		exit(1)
	}
	telemetry.InitLogger(viper.GetBool("verbose"), "")
}

// resultFromRecord rebuilds a reportable result from a stored run. Pass/fail
// is recomputed from the persisted per-benchmark thresholds rather than
// trusted from the record.
func resultFromRecord(rec history.Record) *benchmark.TestResult {
	result := &benchmark.TestResult{
		Name:       "latest-run",
		Timestamp:  rec.Timestamp,
		Benchmarks: rec.Benchmarks,
		Summary:    benchmark.Summarize(rec.Benchmarks),
	}
	result.Passed = result.Summary.FailedIterations == 0
	return result
}

// openStore builds the configured history backend.
func openStore(s config.Settings) (history.Store, error) {
	return history.NewStore(history.StoreConfig{
		Backend:          s.HistoryBackend,
		Dir:              s.HistoryDir,
		ConnectionString: s.HistoryDSN,
		MaxRecords:       s.HistoryMaxRecords,
	})
}
