// Package regression compares fresh benchmark results against the
// accumulated historical baseline and classifies deltas into severity tiers.
package regression

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"perfbench/internal/benchmark"
	"perfbench/internal/history"
)

// DefaultMinSamples is the historical sample count below which a benchmark
// name is skipped entirely, to avoid false positives from thin data.
const DefaultMinSamples = 3

// Config holds the detector's gating and classification settings.
type Config struct {
	MinSamples int
	// HistoryWindow caps how many historical samples feed the baseline.
	// Zero means all retained history.
	HistoryWindow int
	Duration      Ladder
	Memory        Ladder
	CPU           Ladder
}

// DefaultConfig returns the standard per-dimension ladders.
func DefaultConfig() Config {
	return Config{
		MinSamples: DefaultMinSamples,
		Duration:   Ladder{Minor: 5, Moderate: 15, Major: 30, Critical: 50},
		Memory:     Ladder{Minor: 10, Moderate: 25, Major: 50, Critical: 100},
		CPU:        Ladder{Minor: 10, Moderate: 20, Major: 40, Critical: 60},
	}
}

// Analysis is the per-benchmark-name comparison against the baseline.
type Analysis struct {
	Name    string `json:"name"`
	Samples int    `json:"samples"`

	CurrentDuration  time.Duration `json:"current_duration"`
	BaselineDuration time.Duration `json:"baseline_duration"`
	DurationDeltaPct float64       `json:"duration_delta_pct"`

	CurrentMemoryDelta  float64 `json:"current_memory_delta"`
	BaselineMemoryDelta float64 `json:"baseline_memory_delta"`
	MemoryDeltaPct      float64 `json:"memory_delta_pct"`

	CurrentCPUPercent  *float64 `json:"current_cpu_percent,omitempty"`
	BaselineCPUPercent *float64 `json:"baseline_cpu_percent,omitempty"`
	CPUDeltaPct        *float64 `json:"cpu_delta_pct,omitempty"`

	Severity Severity `json:"severity"`
}

// Report aggregates the analyses of one detection pass.
type Report struct {
	Timestamp      time.Time  `json:"timestamp"`
	Analyses       []Analysis `json:"analyses"`
	HasRegressions bool       `json:"has_regressions"`
	WorstSeverity  Severity   `json:"worst_severity"`
	Summary        string     `json:"summary"`
}

// Detector reads baselines from a history store.
type Detector struct {
	store  history.Store
	cfg    Config
	logger *slog.Logger
}

func NewDetector(store history.Store, cfg Config, logger *slog.Logger) *Detector {
	if cfg.MinSamples <= 0 {
		cfg.MinSamples = DefaultMinSamples
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{store: store, cfg: cfg, logger: logger}
}

// Analyze compares the fresh benchmarks against history, one analysis per
// distinct name. Names with fewer than MinSamples stored samples are skipped.
// Multiple fresh benchmarks under one name (iterations) are averaged before
// comparison.
func (d *Detector) Analyze(ctx context.Context, current []benchmark.Benchmark) (*Report, error) {
	report := &Report{Timestamp: time.Now()}

	for _, name := range distinctNames(current) {
		historical, err := d.store.Load(ctx, name, d.cfg.HistoryWindow)
		if err != nil {
			return nil, fmt.Errorf("loading history for %q: %w", name, err)
		}
		if len(historical) < d.cfg.MinSamples {
			d.logger.Debug("skipping regression analysis, not enough history",
				"benchmark", name, "samples", len(historical), "min", d.cfg.MinSamples)
			continue
		}

		analysis := d.analyzeOne(name, byName(current, name), historical)
		report.Analyses = append(report.Analyses, analysis)
		if analysis.Severity > report.WorstSeverity {
			report.WorstSeverity = analysis.Severity
		}
		if analysis.Severity != SeverityNone {
			report.HasRegressions = true
		}
	}

	report.Summary = summarize(report)
	return report, nil
}

func (d *Detector) analyzeOne(name string, current, historical []benchmark.Benchmark) Analysis {
	a := Analysis{Name: name, Samples: len(historical)}

	curDur, curMem, curCPU := means(current)
	baseDur, baseMem, baseCPU := means(historical)

	a.CurrentDuration = time.Duration(curDur)
	a.BaselineDuration = time.Duration(baseDur)
	if baseDur > 0 {
		a.DurationDeltaPct = (curDur - baseDur) / baseDur * 100
	}

	a.CurrentMemoryDelta = curMem
	a.BaselineMemoryDelta = baseMem
	// Divides by the baseline's absolute value so a negative baseline (heap
	// shrank historically) doesn't flip the sign of the delta. Known weak
	// spot: near-zero baselines inflate the percentage; callers should read
	// memory deltas with that in mind.
	if baseMem != 0 {
		a.MemoryDeltaPct = (curMem - baseMem) / math.Abs(baseMem) * 100
	}

	severity := d.cfg.Duration.Classify(a.DurationDeltaPct)
	if s := d.cfg.Memory.Classify(a.MemoryDeltaPct); s > severity {
		severity = s
	}

	if curCPU != nil && baseCPU != nil && *baseCPU > 0 {
		pct := (*curCPU - *baseCPU) / *baseCPU * 100
		a.CurrentCPUPercent = curCPU
		a.BaselineCPUPercent = baseCPU
		a.CPUDeltaPct = &pct
		if s := d.cfg.CPU.Classify(pct); s > severity {
			severity = s
		}
	}

	a.Severity = severity
	return a
}

// means returns the average duration, memory delta and (when any sample has
// one) CPU percentage of a benchmark group.
func means(benchmarks []benchmark.Benchmark) (dur, mem float64, cpu *float64) {
	if len(benchmarks) == 0 {
		return 0, 0, nil
	}
	var cpuSum float64
	var cpuCount int
	for _, b := range benchmarks {
		dur += float64(b.Sample.Duration)
		mem += float64(b.Sample.MemoryDelta)
		if b.Sample.CPUPercent != nil {
			cpuSum += *b.Sample.CPUPercent
			cpuCount++
		}
	}
	n := float64(len(benchmarks))
	dur /= n
	mem /= n
	if cpuCount > 0 {
		avg := cpuSum / float64(cpuCount)
		cpu = &avg
	}
	return dur, mem, cpu
}

func distinctNames(benchmarks []benchmark.Benchmark) []string {
	seen := make(map[string]bool)
	var names []string
	for _, b := range benchmarks {
		if !seen[b.Name] {
			seen[b.Name] = true
			names = append(names, b.Name)
		}
	}
	return names
}

func byName(benchmarks []benchmark.Benchmark, name string) []benchmark.Benchmark {
	var out []benchmark.Benchmark
	for _, b := range benchmarks {
		if b.Name == name {
			out = append(out, b)
		}
	}
	return out
}

func summarize(r *Report) string {
	if !r.HasRegressions {
		return "No performance regressions detected"
	}
	regressed := 0
	for _, a := range r.Analyses {
		if a.Severity != SeverityNone {
			regressed++
		}
	}
	return fmt.Sprintf("%d of %d analyzed benchmarks regressed (worst: %s)",
		regressed, len(r.Analyses), r.WorstSeverity)
}
