package report

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"perfbench/internal/benchmark"
)

// RenderCSV produces the delimiter-separated per-benchmark table.
func RenderCSV(result *benchmark.TestResult) (string, error) {
	var b strings.Builder
	w := csv.NewWriter(&b)

	if err := w.Write([]string{"name", "duration_ms", "memory_delta_bytes", "cpu_percent", "passed"}); err != nil {
		return "", err
	}
	for _, bm := range result.Benchmarks {
		cpu := ""
		if bm.Sample.CPUPercent != nil {
			cpu = strconv.FormatFloat(*bm.Sample.CPUPercent, 'f', 2, 64)
		}
		row := []string{
			bm.Name,
			strconv.FormatFloat(float64(bm.Sample.Duration.Microseconds())/1000, 'f', 3, 64),
			strconv.FormatInt(bm.Sample.MemoryDelta, 10),
			cpu,
			strconv.FormatBool(bm.Passed()),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to render CSV report: %w", err)
	}
	return b.String(), nil
}
