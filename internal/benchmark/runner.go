package benchmark

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"perfbench/internal/sampler"
)

// TestFunc is the operation under measurement.
type TestFunc func(ctx context.Context) error

// Hook runs before or after each iteration.
type Hook func(ctx context.Context) error

// Config describes one named test.
type Config struct {
	Name       string
	Iterations int // default 1
	Thresholds *Thresholds

	CollectMemory  bool
	CollectCPU     bool
	SampleInterval time.Duration

	Setup   Hook
	Cleanup Hook

	// Metadata is carried into every iteration's sample.
	Metadata map[string]any
}

// Runner executes configured tests strictly sequentially. Iterations never
// overlap: running benchmarked work concurrently would corrupt the shared
// process-wide memory and CPU counters.
type Runner struct {
	logger    *slog.Logger
	collector *Collector
}

// NewRunner returns a runner logging through logger and recording results
// into collector. Both may be nil.
func NewRunner(logger *slog.Logger, collector *Collector) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{logger: logger, collector: collector}
}

// Run executes fn for the configured number of iterations and aggregates the
// outcome. A failing iteration does not abort the run: the error is logged
// and a degraded benchmark with zeroed metrics and the error message in its
// metadata takes the iteration's place. With no thresholds configured the
// result passes regardless of errors or measured values.
func (r *Runner) Run(ctx context.Context, fn TestFunc, cfg Config) (*TestResult, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("benchmark config requires a name")
	}
	iterations := cfg.Iterations
	if iterations < 1 {
		iterations = 1
	}

	result := &TestResult{
		Name:       cfg.Name,
		Timestamp:  time.Now(),
		Benchmarks: make([]Benchmark, 0, iterations),
		// Copied so later mutation of the caller's config map cannot reach
		// into the finished result.
		Metadata: copyMetadata(cfg.Metadata),
	}

	for i := 0; i < iterations; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("benchmark %q interrupted: %w", cfg.Name, err)
		}
		result.Benchmarks = append(result.Benchmarks, r.runIteration(ctx, fn, cfg, i))
	}

	result.Summary = Summarize(result.Benchmarks)
	result.Passed = cfg.Thresholds == nil || result.Summary.FailedIterations == 0

	if r.collector != nil {
		r.collector.Add(result)
	}
	return result, nil
}

// runIteration performs setup, measurement and cleanup for one iteration.
// Cleanup always runs, even when setup or the measured operation fails.
func (r *Runner) runIteration(ctx context.Context, fn TestFunc, cfg Config, iteration int) Benchmark {
	defer func() {
		if cfg.Cleanup == nil {
			return
		}
		if err := cfg.Cleanup(ctx); err != nil {
			r.logger.Warn("cleanup hook failed",
				"benchmark", cfg.Name, "iteration", iteration, "error", err)
		}
	}()

	if cfg.Setup != nil {
		if err := cfg.Setup(ctx); err != nil {
			r.logger.Warn("setup hook failed",
				"benchmark", cfg.Name, "iteration", iteration, "error", err)
			return r.degraded(cfg, iteration, err)
		}
	}

	sample, err := sampler.Measure(ctx, sampler.Op(fn), sampler.Options{
		CollectMemory:  cfg.CollectMemory,
		CollectCPU:     cfg.CollectCPU,
		SampleInterval: cfg.SampleInterval,
	})
	if err != nil {
		r.logger.Warn("benchmark iteration failed",
			"benchmark", cfg.Name, "iteration", iteration, "error", err)
		return r.degraded(cfg, iteration, err)
	}

	sample.Metadata = iterationMetadata(cfg.Metadata, iteration)
	return Benchmark{Name: cfg.Name, Sample: sample, Thresholds: cfg.Thresholds}
}

// degraded builds the stand-in benchmark for a failed iteration.
func (r *Runner) degraded(cfg Config, iteration int, err error) Benchmark {
	meta := iterationMetadata(cfg.Metadata, iteration)
	meta["error"] = err.Error()
	return Benchmark{
		Name:       cfg.Name,
		Sample:     sampler.Sample{Timestamp: time.Now(), Metadata: meta},
		Thresholds: cfg.Thresholds,
	}
}

func iterationMetadata(base map[string]any, iteration int) map[string]any {
	meta := copyMetadata(base)
	if meta == nil {
		meta = make(map[string]any, 1)
	}
	meta["iteration"] = iteration
	return meta
}

func copyMetadata(base map[string]any) map[string]any {
	if base == nil {
		return nil
	}
	meta := make(map[string]any, len(base))
	for k, v := range base {
		meta[k] = v
	}
	return meta
}
