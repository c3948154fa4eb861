// Package metrics exposes benchmark results as Prometheus gauges so a
// long-lived harness process can be scraped between runs.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"perfbench/internal/benchmark"
)

// Metrics holds the per-benchmark gauge families. Each publishes the latest
// run's summary, labelled by benchmark name.
type Metrics struct {
	registry *prometheus.Registry

	DurationSeconds  *prometheus.GaugeVec
	MemoryDeltaBytes *prometheus.GaugeVec
	CPUPercent       *prometheus.GaugeVec
	Passed           *prometheus.GaugeVec
	Iterations       *prometheus.GaugeVec

	RunsTotal prometheus.Counter
}

// NewMetrics creates the gauges on a private registry, so tests and multiple
// harness instances never collide on the global one.
func NewMetrics() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.DurationSeconds = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "perfbench_duration_seconds",
			Help: "Average duration of the most recent benchmark run",
		},
		[]string{"benchmark"},
	)

	m.MemoryDeltaBytes = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "perfbench_memory_delta_bytes",
			Help: "Average heap delta of the most recent benchmark run",
		},
		[]string{"benchmark"},
	)

	m.CPUPercent = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "perfbench_cpu_percent",
			Help: "Average CPU usage of the most recent benchmark run",
		},
		[]string{"benchmark"},
	)

	m.Passed = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "perfbench_passed",
			Help: "Whether the most recent benchmark run passed (1) or failed (0)",
		},
		[]string{"benchmark"},
	)

	m.Iterations = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "perfbench_iterations",
			Help: "Iteration count of the most recent benchmark run",
		},
		[]string{"benchmark"},
	)

	m.RunsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "perfbench_runs_total",
			Help: "Total number of benchmark runs published",
		},
	)

	m.registry.MustRegister(
		m.DurationSeconds,
		m.MemoryDeltaBytes,
		m.CPUPercent,
		m.Passed,
		m.Iterations,
		m.RunsTotal,
	)

	return m
}

// Publish updates the gauges from a completed run.
func (m *Metrics) Publish(result *benchmark.TestResult) {
	if result == nil {
		return
	}
	labels := prometheus.Labels{"benchmark": result.Name}

	m.DurationSeconds.With(labels).Set(result.Summary.AverageDuration.Seconds())
	m.MemoryDeltaBytes.With(labels).Set(result.Summary.AverageMemoryDelta)
	if result.Summary.AverageCPUPercent != nil {
		m.CPUPercent.With(labels).Set(*result.Summary.AverageCPUPercent)
	}
	passed := 0.0
	if result.Passed {
		passed = 1.0
	}
	m.Passed.With(labels).Set(passed)
	m.Iterations.With(labels).Set(float64(len(result.Benchmarks)))
	m.RunsTotal.Inc()
}

// Handler serves the private registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
