package report

import (
	"context"
	"fmt"

	"perfbench/internal/benchmark"
	"perfbench/internal/regression"
)

// Alert types.
const (
	AlertTypeThreshold  = "threshold"
	AlertTypeRegression = "regression"
)

// Alert severities.
const (
	AlertSeverityLow      = "low"
	AlertSeverityMedium   = "medium"
	AlertSeverityHigh     = "high"
	AlertSeverityCritical = "critical"
)

// Alert is one reportable violation, dispatched to the configured channels.
type Alert struct {
	Type      string         `json:"type"`
	Severity  string         `json:"severity"`
	Message   string         `json:"message"`
	Benchmark string         `json:"benchmark"`
	Context   map[string]any `json:"context,omitempty"`
}

// AlertChannel delivers alerts somewhere. Send failures are logged by the
// reporter and never abort report generation.
type AlertChannel interface {
	Name() string
	Send(ctx context.Context, alerts []Alert) error
}

// EvaluateAlerts derives alerts from threshold violations in the result and
// from every regression analysis with a detected severity.
func EvaluateAlerts(result *benchmark.TestResult, reg *regression.Report) []Alert {
	var alerts []Alert

	for i, bm := range result.Benchmarks {
		if bm.Passed() {
			continue
		}
		alerts = append(alerts, Alert{
			Type:      AlertTypeThreshold,
			Severity:  thresholdSeverity(bm),
			Message:   thresholdMessage(bm),
			Benchmark: bm.Name,
			Context: map[string]any{
				"iteration":   i,
				"duration_ms": float64(bm.Sample.Duration.Microseconds()) / 1000,
			},
		})
	}

	if reg != nil {
		for _, a := range reg.Analyses {
			if a.Severity == regression.SeverityNone {
				continue
			}
			alerts = append(alerts, Alert{
				Type:     AlertTypeRegression,
				Severity: regressionSeverity(a.Severity),
				Message: fmt.Sprintf("%s regressed (%s): duration %+.1f%%, memory %+.1f%%",
					a.Name, a.Severity, a.DurationDeltaPct, a.MemoryDeltaPct),
				Benchmark: a.Name,
				Context: map[string]any{
					"severity":           a.Severity.String(),
					"duration_delta_pct": a.DurationDeltaPct,
					"memory_delta_pct":   a.MemoryDeltaPct,
					"samples":            a.Samples,
				},
			})
		}
	}

	return alerts
}

// thresholdSeverity grades a violation by how far past its ceiling the
// measurement landed.
func thresholdSeverity(bm benchmark.Benchmark) string {
	ratio := overageRatio(bm)
	switch {
	case ratio >= 2.0:
		return AlertSeverityCritical
	case ratio >= 1.5:
		return AlertSeverityHigh
	case ratio >= 1.2:
		return AlertSeverityMedium
	default:
		return AlertSeverityLow
	}
}

// overageRatio returns the worst measured/ceiling ratio across the violated
// dimensions.
func overageRatio(bm benchmark.Benchmark) float64 {
	t := bm.Thresholds
	if t == nil {
		return 0
	}
	worst := 0.0
	if t.MaxDuration != nil && *t.MaxDuration > 0 {
		if r := float64(bm.Sample.Duration) / float64(*t.MaxDuration); r > worst {
			worst = r
		}
	}
	if t.MaxMemoryDelta != nil && *t.MaxMemoryDelta > 0 {
		if r := float64(bm.Sample.MemoryDelta) / float64(*t.MaxMemoryDelta); r > worst {
			worst = r
		}
	}
	if t.MaxCPUPercent != nil && *t.MaxCPUPercent > 0 && bm.Sample.CPUPercent != nil {
		if r := *bm.Sample.CPUPercent / *t.MaxCPUPercent; r > worst {
			worst = r
		}
	}
	return worst
}

func thresholdMessage(bm benchmark.Benchmark) string {
	t := bm.Thresholds
	if t != nil && t.MaxDuration != nil && bm.Sample.Duration > *t.MaxDuration {
		return fmt.Sprintf("%s exceeded max duration: %s > %s",
			bm.Name, fmtDuration(bm.Sample.Duration), fmtDuration(*t.MaxDuration))
	}
	if t != nil && t.MaxMemoryDelta != nil && bm.Sample.MemoryDelta > *t.MaxMemoryDelta {
		return fmt.Sprintf("%s exceeded max memory delta: %s > %s",
			bm.Name, fmtBytes(float64(bm.Sample.MemoryDelta)), fmtBytes(float64(*t.MaxMemoryDelta)))
	}
	if t != nil && t.MaxCPUPercent != nil && bm.Sample.CPUPercent != nil && *bm.Sample.CPUPercent > *t.MaxCPUPercent {
		return fmt.Sprintf("%s exceeded max CPU: %.1f%% > %.1f%%",
			bm.Name, *bm.Sample.CPUPercent, *t.MaxCPUPercent)
	}
	return fmt.Sprintf("%s exceeded configured thresholds", bm.Name)
}

// regressionSeverity maps detector tiers onto alert severities.
func regressionSeverity(s regression.Severity) string {
	switch s {
	case regression.SeverityCritical:
		return AlertSeverityCritical
	case regression.SeverityMajor:
		return AlertSeverityHigh
	case regression.SeverityModerate:
		return AlertSeverityMedium
	default:
		return AlertSeverityLow
	}
}
