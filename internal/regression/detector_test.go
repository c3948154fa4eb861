package regression

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"perfbench/internal/benchmark"
	"perfbench/internal/history"
)

func bench(name string, dur time.Duration, mem int64) benchmark.Benchmark {
	b := benchmark.Benchmark{Name: name}
	b.Sample.Duration = dur
	b.Sample.MemoryDelta = mem
	b.Sample.Timestamp = time.Now()
	return b
}

func seedHistory(t *testing.T, store history.Store, name string, durations ...time.Duration) {
	t.Helper()
	base := time.Now().Add(-time.Hour)
	for i, d := range durations {
		rec := history.Record{
			Timestamp:  base.Add(time.Duration(i) * time.Minute),
			Platform:   history.CurrentPlatform(),
			Benchmarks: []benchmark.Benchmark{bench(name, d, 1000)},
		}
		require.NoError(t, store.Record(context.Background(), rec))
	}
}

func newDetector(t *testing.T) (*Detector, history.Store) {
	t.Helper()
	store, err := history.NewFileStore(t.TempDir(), 100, nil)
	require.NoError(t, err)
	return NewDetector(store, DefaultConfig(), nil), store
}

func TestAnalyze_SkipsThinHistory(t *testing.T) {
	d, store := newDetector(t)
	seedHistory(t, store, "op", 100*time.Millisecond, 100*time.Millisecond) // only 2 samples

	report, err := d.Analyze(context.Background(), []benchmark.Benchmark{bench("op", 200*time.Millisecond, 1000)})
	require.NoError(t, err)

	assert.Empty(t, report.Analyses)
	assert.False(t, report.HasRegressions)
	assert.Equal(t, SeverityNone, report.WorstSeverity)
}

func TestAnalyze_MajorDurationRegression(t *testing.T) {
	d, store := newDetector(t)
	seedHistory(t, store, "op", 100*time.Millisecond, 100*time.Millisecond, 100*time.Millisecond)

	// 160ms against a 100ms baseline is +60%: major (>=30, <... critical starts
	// at 50 — 60 >= 50, so critical). Use 140ms for major instead.
	report, err := d.Analyze(context.Background(), []benchmark.Benchmark{bench("op", 140*time.Millisecond, 1000)})
	require.NoError(t, err)

	require.Len(t, report.Analyses, 1)
	a := report.Analyses[0]
	assert.InDelta(t, 40.0, a.DurationDeltaPct, 0.01)
	assert.Equal(t, SeverityMajor, a.Severity)
	assert.True(t, report.HasRegressions)
	assert.Equal(t, SeverityMajor, report.WorstSeverity)
}

func TestAnalyze_TierBoundariesInclusive(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, SeverityNone, cfg.Duration.Classify(4.99))
	assert.Equal(t, SeverityMinor, cfg.Duration.Classify(5))
	assert.Equal(t, SeverityModerate, cfg.Duration.Classify(15))
	assert.Equal(t, SeverityMajor, cfg.Duration.Classify(30))
	assert.Equal(t, SeverityMajor, cfg.Duration.Classify(49.99))
	assert.Equal(t, SeverityCritical, cfg.Duration.Classify(50))
	// A 100ms baseline with a 160ms current run is +60%: critical territory
	// starts at 50, so this is critical, not major.
	assert.Equal(t, SeverityCritical, cfg.Duration.Classify(60))
	// Improvements never regress.
	assert.Equal(t, SeverityNone, cfg.Duration.Classify(-80))
}

func TestAnalyze_MemoryOverAbsoluteBaseline(t *testing.T) {
	d, store := newDetector(t)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		rec := history.Record{
			Timestamp:  base.Add(time.Duration(i) * time.Minute),
			Benchmarks: []benchmark.Benchmark{bench("op", 100*time.Millisecond, -1000)},
		}
		require.NoError(t, store.Record(context.Background(), rec))
	}

	// Baseline memory is -1000; current is -500. Delta over |baseline| is
	// +50%, a major memory regression, not a sign-flipped improvement.
	report, err := d.Analyze(context.Background(), []benchmark.Benchmark{bench("op", 100*time.Millisecond, -500)})
	require.NoError(t, err)

	require.Len(t, report.Analyses, 1)
	assert.InDelta(t, 50.0, report.Analyses[0].MemoryDeltaPct, 0.01)
	assert.Equal(t, SeverityMajor, report.Analyses[0].Severity)
}

func TestAnalyze_NoRegression(t *testing.T) {
	d, store := newDetector(t)
	seedHistory(t, store, "op", 100*time.Millisecond, 100*time.Millisecond, 100*time.Millisecond)

	report, err := d.Analyze(context.Background(), []benchmark.Benchmark{bench("op", 101*time.Millisecond, 1000)})
	require.NoError(t, err)

	require.Len(t, report.Analyses, 1)
	assert.Equal(t, SeverityNone, report.Analyses[0].Severity)
	assert.False(t, report.HasRegressions)
	assert.Equal(t, "No performance regressions detected", report.Summary)
}

func TestAnalyze_AveragesCurrentIterations(t *testing.T) {
	d, store := newDetector(t)
	seedHistory(t, store, "op", 100*time.Millisecond, 100*time.Millisecond, 100*time.Millisecond)

	report, err := d.Analyze(context.Background(), []benchmark.Benchmark{
		bench("op", 90*time.Millisecond, 1000),
		bench("op", 110*time.Millisecond, 1000),
	})
	require.NoError(t, err)

	require.Len(t, report.Analyses, 1)
	assert.InDelta(t, 0.0, report.Analyses[0].DurationDeltaPct, 0.01)
}

func TestSeverity_Ordering(t *testing.T) {
	assert.True(t, SeverityCritical > SeverityMajor)
	assert.True(t, SeverityMajor > SeverityModerate)
	assert.True(t, SeverityModerate > SeverityMinor)
	assert.True(t, SeverityMinor > SeverityNone)
	assert.Equal(t, "moderate", SeverityModerate.String())
}
