package benchmark

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Regex for standard Go benchmark output lines:
// BenchmarkName-8   1000000   1000 ns/op   100 B/op   10 allocs/op
var benchLineRegex = regexp.MustCompile(`^(Benchmark\w+)(?:-\d+)?\s+(\d+)\s+([\d\.]+)\s+ns/op(?:\s+([\d\.]+)\s+MB/s)?(?:\s+(\d+)\s+B/op\s+(\d+)\s+allocs/op)?`)

// GoBenchRunner ingests existing `go test -bench` results into the harness
// pipeline so they can be recorded, compared against history and reported
// like natively measured benchmarks.
type GoBenchRunner struct{}

func NewGoBenchRunner() *GoBenchRunner {
	return &GoBenchRunner{}
}

// Run executes `go test -bench=. -benchmem -run=^$` for the given packages
// and parses the output.
func (g *GoBenchRunner) Run(ctx context.Context, packages ...string) ([]Benchmark, error) {
	if len(packages) == 0 {
		packages = []string{"./..."}
	}
	args := []string{"test", "-bench=.", "-benchmem", "-run=^$"}
	args = append(args, packages...)

	cmd := exec.CommandContext(ctx, "go", args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("benchmark execution failed: %w\nOutput:\n%s", err, out.String())
	}
	return ParseGoBenchOutput(out.String()), nil
}

// ParseGoBenchOutput converts standard Go benchmark output into Benchmarks.
// ns/op maps to the sample duration and B/op to the memory delta; iteration
// count, allocations and throughput land in the metadata bag.
func ParseGoBenchOutput(output string) []Benchmark {
	var benchmarks []Benchmark
	now := time.Now()

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		matches := benchLineRegex.FindStringSubmatch(scanner.Text())
		if matches == nil {
			continue
		}

		b := Benchmark{Name: matches[1]}
		b.Sample.Timestamp = now
		b.Sample.Metadata = map[string]any{}

		if val, err := strconv.ParseInt(matches[2], 10, 64); err == nil {
			b.Sample.Metadata["iterations"] = val
		}
		if val, err := strconv.ParseFloat(matches[3], 64); err == nil {
			b.Sample.Duration = time.Duration(val)
		}
		if matches[4] != "" {
			if val, err := strconv.ParseFloat(matches[4], 64); err == nil {
				b.Sample.Metadata["mb_per_sec"] = val
			}
		}
		if matches[5] != "" {
			if val, err := strconv.ParseInt(matches[5], 10, 64); err == nil {
				b.Sample.MemoryDelta = val
			}
		}
		if matches[6] != "" {
			if val, err := strconv.ParseInt(matches[6], 10, 64); err == nil {
				b.Sample.Metadata["allocs_per_op"] = val
			}
		}

		benchmarks = append(benchmarks, b)
	}
	return benchmarks
}
