package report

import (
	"fmt"
	"strings"
	"time"

	"perfbench/internal/benchmark"
	"perfbench/internal/regression"
)

// RenderMarkdown produces the human-readable summary. It is a pure function
// of its inputs: calling it twice on the same result yields identical text.
func RenderMarkdown(result *benchmark.TestResult, reg *regression.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Performance Report: %s\n\n", result.Name)
	fmt.Fprintf(&b, "Generated: %s\n\n", result.Timestamp.Format(time.RFC3339))

	status := "PASSED"
	if !result.Passed {
		status = "FAILED"
	}
	fmt.Fprintf(&b, "**Status**: %s\n\n", status)

	b.WriteString("## Summary\n\n")
	s := result.Summary
	fmt.Fprintf(&b, "- Iterations: %d (%d passed, %d failed)\n",
		len(result.Benchmarks), s.PassedIterations, s.FailedIterations)
	fmt.Fprintf(&b, "- Duration: avg %s, min %s, max %s, stddev %s\n",
		fmtDuration(s.AverageDuration), fmtDuration(s.MinDuration),
		fmtDuration(s.MaxDuration), fmtDuration(s.StdDevDuration))
	fmt.Fprintf(&b, "- Memory delta: avg %s\n", fmtBytes(s.AverageMemoryDelta))
	if s.AverageCPUPercent != nil {
		fmt.Fprintf(&b, "- CPU: avg %.1f%%\n", *s.AverageCPUPercent)
	}
	b.WriteString("\n## Benchmarks\n\n")
	b.WriteString("| Name | Duration | Memory Δ | CPU | Result |\n")
	b.WriteString("|------|----------|----------|-----|--------|\n")
	for _, bm := range result.Benchmarks {
		cpu := "-"
		if bm.Sample.CPUPercent != nil {
			cpu = fmt.Sprintf("%.1f%%", *bm.Sample.CPUPercent)
		}
		verdict := "pass"
		if !bm.Passed() {
			verdict = "fail"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			bm.Name, fmtDuration(bm.Sample.Duration),
			fmtBytes(float64(bm.Sample.MemoryDelta)), cpu, verdict)
	}

	if reg != nil && len(reg.Analyses) > 0 {
		b.WriteString("\n## Regression Analysis\n\n")
		fmt.Fprintf(&b, "%s\n", reg.Summary)
		for _, a := range reg.Analyses {
			if a.Severity == regression.SeverityNone {
				continue
			}
			fmt.Fprintf(&b, "\n### %s — %s\n\n", a.Name, a.Severity)
			fmt.Fprintf(&b, "- Duration: %s vs baseline %s (%+.1f%%)\n",
				fmtDuration(a.CurrentDuration), fmtDuration(a.BaselineDuration), a.DurationDeltaPct)
			fmt.Fprintf(&b, "- Memory: %s vs baseline %s (%+.1f%%)\n",
				fmtBytes(a.CurrentMemoryDelta), fmtBytes(a.BaselineMemoryDelta), a.MemoryDeltaPct)
			if a.CPUDeltaPct != nil {
				fmt.Fprintf(&b, "- CPU: %.1f%% vs baseline %.1f%% (%+.1f%%)\n",
					*a.CurrentCPUPercent, *a.BaselineCPUPercent, *a.CPUDeltaPct)
			}
		}
	}

	return b.String()
}

func fmtDuration(d time.Duration) string {
	return d.Round(time.Microsecond).String()
}

func fmtBytes(v float64) string {
	abs := v
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs >= 1<<20:
		return fmt.Sprintf("%.2fMB", v/(1<<20))
	case abs >= 1<<10:
		return fmt.Sprintf("%.2fKB", v/(1<<10))
	default:
		return fmt.Sprintf("%.0fB", v)
	}
}
