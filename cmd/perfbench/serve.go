package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"perfbench/internal/config"
	"perfbench/internal/metrics"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose the latest benchmark results as Prometheus metrics",
	Long: `Publishes the most recent stored run on /metrics and keeps serving until
interrupted. Pair it with a Prometheus scrape job to chart benchmark results
next to production metrics.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Listen port (defaults to metrics_port config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	settings := config.Current()
	port := servePort
	if port == 0 {
		port = settings.MetricsPort
	}

	store, err := openStore(settings)
	if err != nil {
		return err
	}
	defer store.Close()

	m := metrics.NewMetrics()
	runs, err := store.Runs(cmd.Context())
	if err != nil {
		return err
	}
	if len(runs) > 0 {
		m.Publish(resultFromRecord(runs[len(runs)-1]))
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	fmt.Fprintf(cmd.OutOrStdout(), "Serving metrics on :%d/metrics\n", port)

	select {
	case <-cmd.Context().Done():
		return srv.Close()
	case err := <-errCh:
		return err
	}
}
