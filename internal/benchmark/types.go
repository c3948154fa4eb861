package benchmark

import (
	"time"

	"perfbench/internal/sampler"
)

// Benchmark is one measured execution of an operation plus its metrics.
// Names are not unique across runs; a multi-iteration test produces one
// Benchmark per iteration under the same name.
type Benchmark struct {
	Name       string         `json:"name"`
	Sample     sampler.Sample `json:"sample"`
	Thresholds *Thresholds    `json:"thresholds,omitempty"`
}

// Passed reports whether the benchmark stayed within its own thresholds.
// A benchmark without thresholds always passes.
func (b Benchmark) Passed() bool {
	return b.Thresholds.Check(b.Sample)
}

// Thresholds are configured ceilings per metric. A nil field means no ceiling
// on that dimension; absence is deliberately distinct from zero.
type Thresholds struct {
	MaxDuration    *time.Duration `json:"max_duration,omitempty"`
	MaxMemoryDelta *int64         `json:"max_memory_delta,omitempty"`
	MaxCPUPercent  *float64       `json:"max_cpu_percent,omitempty"`
}

// Check reports whether the sample stays within every configured ceiling.
// A nil Thresholds passes everything.
func (t *Thresholds) Check(s sampler.Sample) bool {
	if t == nil {
		return true
	}
	if t.MaxDuration != nil && s.Duration > *t.MaxDuration {
		return false
	}
	if t.MaxMemoryDelta != nil && s.MemoryDelta > *t.MaxMemoryDelta {
		return false
	}
	if t.MaxCPUPercent != nil && s.CPUPercent != nil && *s.CPUPercent > *t.MaxCPUPercent {
		return false
	}
	return true
}

// Summary aggregates the samples of one test run.
type Summary struct {
	AverageDuration    time.Duration `json:"average_duration"`
	MinDuration        time.Duration `json:"min_duration"`
	MaxDuration        time.Duration `json:"max_duration"`
	StdDevDuration     time.Duration `json:"std_dev_duration"`
	AverageMemoryDelta float64       `json:"average_memory_delta"`
	AverageCPUPercent  *float64      `json:"average_cpu_percent,omitempty"`
	PassedIterations   int           `json:"passed_iterations"`
	FailedIterations   int           `json:"failed_iterations"`
}

// TestResult is the outcome of running one named test for N iterations.
type TestResult struct {
	Name       string         `json:"name"`
	Timestamp  time.Time      `json:"timestamp"`
	Benchmarks []Benchmark    `json:"benchmarks"`
	Summary    Summary        `json:"summary"`
	Passed     bool           `json:"passed"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// SuiteResult aggregates the results of sequentially executed tests.
type SuiteResult struct {
	TotalTests      int           `json:"total_tests"`
	PassedTests     int           `json:"passed_tests"`
	FailedTests     int           `json:"failed_tests"`
	TotalIterations int           `json:"total_iterations"`
	AverageDuration time.Duration `json:"average_duration"`
	Results         []*TestResult `json:"results"`
}
