// Package history persists benchmark runs for later trend and regression
// analysis. The store is assumed single-writer: one harness run at a time.
// Concurrent runs against the same backing store may interleave writes or
// over-prune; this is an accepted limitation for test tooling and no
// cross-process locking is attempted.
package history

import (
	"context"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"perfbench/internal/benchmark"
)

// DefaultMaxRecords is the retained run count before pruning.
const DefaultMaxRecords = 50

// Platform captures where a run was recorded.
type Platform struct {
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	GoVersion string `json:"go_version"`
}

// Record is one persisted snapshot of all benchmarks from a single run.
type Record struct {
	Timestamp      time.Time             `json:"timestamp"`
	CommitHash     string                `json:"commit_hash,omitempty"`
	HarnessVersion string                `json:"harness_version,omitempty"`
	Platform       Platform              `json:"platform"`
	Benchmarks     []benchmark.Benchmark `json:"benchmarks"`
}

// Store persists and retrieves historical records. Prune runs implicitly
// after every Record call; it is exposed for callers that want to enforce
// the budget without writing.
type Store interface {
	Record(ctx context.Context, rec Record) error
	// Load returns the most recent count benchmarks matching name across all
	// stored records, ordered oldest to newest for trend plotting.
	Load(ctx context.Context, name string, count int) ([]benchmark.Benchmark, error)
	// Runs returns all readable records ordered oldest to newest.
	Runs(ctx context.Context) ([]Record, error)
	Prune(ctx context.Context) error
	Close() error
}

// NewRecord builds a record from a completed test result, tagged with
// best-effort platform and source-control metadata.
func NewRecord(result *benchmark.TestResult, version string) Record {
	return Record{
		Timestamp:      time.Now(),
		CommitHash:     CommitHash("."),
		HarnessVersion: version,
		Platform:       CurrentPlatform(),
		Benchmarks:     result.Benchmarks,
	}
}

func CurrentPlatform() Platform {
	return Platform{
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		GoVersion: runtime.Version(),
	}
}

// CommitHash returns the current revision of the repository at dir, or ""
// when dir is not a git work tree or git is unavailable.
func CommitHash(dir string) string {
	cmd := exec.Command("git", "rev-parse", "HEAD")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// matching filters benchmarks by name, preserving order.
func matching(records []Record, name string) []benchmark.Benchmark {
	var out []benchmark.Benchmark
	for _, rec := range records {
		for _, b := range rec.Benchmarks {
			if b.Name == name {
				out = append(out, b)
			}
		}
	}
	return out
}

// tail returns the last count elements, or everything when count <= 0 or the
// slice is shorter.
func tail(benchmarks []benchmark.Benchmark, count int) []benchmark.Benchmark {
	if count <= 0 || len(benchmarks) <= count {
		return benchmarks
	}
	return benchmarks[len(benchmarks)-count:]
}
