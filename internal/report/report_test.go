package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perfbench/internal/benchmark"
	"perfbench/internal/regression"
	"perfbench/internal/sampler"
)

func passingResult(name string) *benchmark.TestResult {
	benchmarks := []benchmark.Benchmark{
		{Name: name, Sample: sampler.Sample{Duration: 10 * time.Millisecond, MemoryDelta: 2048, Timestamp: time.Now()}},
		{Name: name, Sample: sampler.Sample{Duration: 12 * time.Millisecond, MemoryDelta: 4096, Timestamp: time.Now()}},
	}
	return &benchmark.TestResult{
		Name:       name,
		Timestamp:  time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		Benchmarks: benchmarks,
		Summary:    benchmark.Summarize(benchmarks),
		Passed:     true,
	}
}

func failingResult(name string) *benchmark.TestResult {
	maxDur := 50 * time.Millisecond
	thresholds := &benchmark.Thresholds{MaxDuration: &maxDur}
	benchmarks := []benchmark.Benchmark{
		{Name: name, Sample: sampler.Sample{Duration: 120 * time.Millisecond, Timestamp: time.Now()}, Thresholds: thresholds},
	}
	return &benchmark.TestResult{
		Name:       name,
		Timestamp:  time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		Benchmarks: benchmarks,
		Summary:    benchmark.Summarize(benchmarks),
		Passed:     false,
	}
}

func TestRenderMarkdownDeterministic(t *testing.T) {
	result := passingResult("api_latency")

	first := RenderMarkdown(result, nil)
	second := RenderMarkdown(result, nil)

	assert.Equal(t, first, second)
	assert.Contains(t, first, "# Performance Report: api_latency")
	assert.Contains(t, first, "**Status**: PASSED")
	assert.Contains(t, first, "| api_latency |")
}

func TestRenderMarkdownFailedStatus(t *testing.T) {
	md := RenderMarkdown(failingResult("slow_op"), nil)

	assert.Contains(t, md, "**Status**: FAILED")
	assert.Contains(t, md, "| fail |")
}

func TestRenderMarkdownRegressionSection(t *testing.T) {
	reg := &regression.Report{
		Timestamp:      time.Now(),
		HasRegressions: true,
		WorstSeverity:  regression.SeverityMajor,
		Summary:        "1 of 1 analyzed benchmarks regressed (worst: major)",
		Analyses: []regression.Analysis{{
			Name:             "api_latency",
			Samples:          5,
			CurrentDuration:  140 * time.Millisecond,
			BaselineDuration: 100 * time.Millisecond,
			DurationDeltaPct: 40,
			Severity:         regression.SeverityMajor,
		}},
	}

	md := RenderMarkdown(passingResult("api_latency"), reg)

	assert.Contains(t, md, "## Regression Analysis")
	assert.Contains(t, md, "api_latency — major")
	assert.Contains(t, md, "+40.0%")
}

func TestRenderHTML(t *testing.T) {
	html, err := RenderHTML(passingResult("api_latency"), nil)
	require.NoError(t, err)

	assert.Contains(t, html, "<title>Performance Report: api_latency</title>")
	assert.Contains(t, html, `class="pass"`)
	assert.NotContains(t, html, "Regression Analysis")
}

func TestRenderCSV(t *testing.T) {
	out, err := RenderCSV(passingResult("api_latency"))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "name,duration_ms,memory_delta_bytes,cpu_percent,passed", lines[0])
	assert.Contains(t, lines[1], "api_latency,10.000,2048,,true")
}

func TestEvaluateAlertsThreshold(t *testing.T) {
	alerts := EvaluateAlerts(failingResult("slow_op"), nil)

	require.Len(t, alerts, 1)
	assert.Equal(t, AlertTypeThreshold, alerts[0].Type)
	// 120ms against a 50ms ceiling is a 2.4x overage.
	assert.Equal(t, AlertSeverityCritical, alerts[0].Severity)
	assert.Equal(t, "slow_op", alerts[0].Benchmark)
	assert.Contains(t, alerts[0].Message, "exceeded max duration")
}

func TestEvaluateAlertsSeverityGrading(t *testing.T) {
	maxDur := 100 * time.Millisecond
	cases := []struct {
		duration time.Duration
		want     string
	}{
		{110 * time.Millisecond, AlertSeverityLow},
		{130 * time.Millisecond, AlertSeverityMedium},
		{160 * time.Millisecond, AlertSeverityHigh},
		{250 * time.Millisecond, AlertSeverityCritical},
	}
	for _, tc := range cases {
		result := &benchmark.TestResult{
			Name: "graded",
			Benchmarks: []benchmark.Benchmark{{
				Name:       "graded",
				Sample:     sampler.Sample{Duration: tc.duration},
				Thresholds: &benchmark.Thresholds{MaxDuration: &maxDur},
			}},
		}
		alerts := EvaluateAlerts(result, nil)
		require.Len(t, alerts, 1, "duration %s", tc.duration)
		assert.Equal(t, tc.want, alerts[0].Severity, "duration %s", tc.duration)
	}
}

func TestEvaluateAlertsRegression(t *testing.T) {
	reg := &regression.Report{
		Analyses: []regression.Analysis{
			{Name: "stable", Severity: regression.SeverityNone},
			{Name: "drifting", Severity: regression.SeverityModerate, DurationDeltaPct: 20},
			{Name: "broken", Severity: regression.SeverityCritical, DurationDeltaPct: 80},
		},
	}

	alerts := EvaluateAlerts(passingResult("suite"), reg)

	require.Len(t, alerts, 2)
	assert.Equal(t, AlertSeverityMedium, alerts[0].Severity)
	assert.Equal(t, "drifting", alerts[0].Benchmark)
	assert.Equal(t, AlertSeverityCritical, alerts[1].Severity)
	assert.Equal(t, "broken", alerts[1].Benchmark)
}

func TestEvaluateAlertsCleanRun(t *testing.T) {
	alerts := EvaluateAlerts(passingResult("clean"), &regression.Report{})
	assert.Empty(t, alerts)
}

func TestConsoleChannel(t *testing.T) {
	var buf bytes.Buffer
	ch := &ConsoleChannel{out: &buf}

	err := ch.Send(context.Background(), []Alert{
		{Type: AlertTypeThreshold, Severity: AlertSeverityHigh, Message: "slow_op exceeded max duration"},
	})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "[HIGH/threshold] slow_op exceeded max duration")
}

func TestFileChannel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alerts", "alerts.json")
	ch := NewFileChannel(path)

	alerts := []Alert{{Type: AlertTypeRegression, Severity: AlertSeverityMedium, Message: "drift", Benchmark: "x"}}
	require.NoError(t, ch.Send(context.Background(), alerts))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got []Alert
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got, 1)
	assert.Equal(t, "drift", got[0].Message)

	// Empty dispatch still overwrites with a valid empty array.
	require.NoError(t, ch.Send(context.Background(), nil))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(string(data)))
}

func TestSlackChannelRequiresURL(t *testing.T) {
	ch := NewSlackChannel("")
	err := ch.Send(context.Background(), []Alert{{Message: "x"}})
	assert.Error(t, err)
}

func TestSlackChannelNoAlertsNoPost(t *testing.T) {
	// An unreachable URL proves nothing is posted when there are no alerts.
	ch := NewSlackChannel("http://127.0.0.1:1/webhook")
	assert.NoError(t, ch.Send(context.Background(), nil))
}

type failingChannel struct{}

func (failingChannel) Name() string                        { return "failing" }
func (failingChannel) Send(context.Context, []Alert) error { return fmt.Errorf("boom") }

func TestReporterGenerate(t *testing.T) {
	dir := t.TempDir()
	r := NewReporter(Options{OutputDir: dir, Markdown: true, JSON: true, HTML: true, CSV: true}, nil, nil)

	gen, err := r.Generate(context.Background(), passingResult("api_latency"), nil)
	require.NoError(t, err)

	require.Len(t, gen.Files, 4)
	for _, f := range gen.Files {
		info, err := os.Stat(f)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
		assert.Contains(t, filepath.Base(f), "api_latency-")
	}
}

func TestReporterGenerateSelectedFormats(t *testing.T) {
	dir := t.TempDir()
	r := NewReporter(Options{OutputDir: dir, Markdown: true}, nil, nil)

	gen, err := r.Generate(context.Background(), passingResult("md_only"), nil)
	require.NoError(t, err)

	require.Len(t, gen.Files, 1)
	assert.Equal(t, ".md", filepath.Ext(gen.Files[0]))
}

func TestReporterSwallowsChannelFailure(t *testing.T) {
	dir := t.TempDir()
	r := NewReporter(Options{OutputDir: dir, Markdown: true}, []AlertChannel{failingChannel{}}, nil)

	gen, err := r.Generate(context.Background(), failingResult("slow_op"), nil)
	require.NoError(t, err)
	assert.NotEmpty(t, gen.Alerts)
}

func TestReporterNilResult(t *testing.T) {
	r := NewReporter(Options{OutputDir: t.TempDir()}, nil, nil)
	_, err := r.Generate(context.Background(), nil, nil)
	assert.Error(t, err)
}
