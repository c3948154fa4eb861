package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perfbench/internal/benchmark"
)

func resetEnv(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Setenv("CI", "")
	t.Cleanup(viper.Reset)
}

func TestLoadDefaults(t *testing.T) {
	resetEnv(t)
	t.Chdir(t.TempDir())

	require.NoError(t, Load(""))
	s := Current()

	// No explicit iteration count, so the developer profile's default applies.
	assert.Equal(t, 5, s.Iterations)
	assert.Equal(t, 10*time.Millisecond, s.SampleInterval)
	assert.True(t, s.CollectMemory)
	assert.Equal(t, "file", s.HistoryBackend)
	assert.Equal(t, "test-results/performance/history", s.HistoryDir)
	assert.Equal(t, 50, s.HistoryMaxRecords)
	assert.Equal(t, "test-results/performance/reports", s.ReportDir)
	assert.True(t, s.ReportMarkdown)
	assert.False(t, s.ReportHTML)
	assert.Equal(t, 3, s.RegressionMinSamples)
	assert.Equal(t, 2112, s.MetricsPort)
}

func TestLoadEnvOverride(t *testing.T) {
	resetEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("PERFBENCH_ITERATIONS", "10")
	t.Setenv("PERFBENCH_HISTORY_BACKEND", "sqlite")

	require.NoError(t, Load(""))
	s := Current()

	assert.Equal(t, 10, s.Iterations)
	assert.Equal(t, "sqlite", s.HistoryBackend)
}

func TestLoadConfigFile(t *testing.T) {
	resetEnv(t)
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "perfbench.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("iterations: 7\nreport:\n  html: true\n"), 0o644))

	require.NoError(t, Load(cfgPath))
	s := Current()

	assert.Equal(t, 7, s.Iterations)
	assert.True(t, s.ReportHTML)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	resetEnv(t)
	assert.Error(t, Load(filepath.Join(t.TempDir(), "nope.yaml")))
}

func TestActiveProfile(t *testing.T) {
	t.Setenv("CI", "")
	assert.Equal(t, "developer", ActiveProfile().Name)

	t.Setenv("CI", "true")
	assert.Equal(t, "ci", ActiveProfile().Name)
}

func TestCIProfileFewerIterations(t *testing.T) {
	resetEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("CI", "true")

	require.NoError(t, Load(""))
	s := Current()

	assert.Equal(t, CIProfile().DefaultIterations, s.Iterations)
	// CI trades iteration count for pipeline speed; the developer profile
	// measures more.
	assert.Less(t, CIProfile().DefaultIterations, DeveloperProfile().DefaultIterations)
}

func TestProfileApplyKeepsExplicitIterations(t *testing.T) {
	s := Settings{Iterations: 3}
	CIProfile().Apply(&s)
	assert.Equal(t, 3, s.Iterations)

	s = Settings{}
	DeveloperProfile().Apply(&s)
	assert.Equal(t, 5, s.Iterations)
}

func TestProfileScaleThresholds(t *testing.T) {
	maxDur := 100 * time.Millisecond
	maxMem := int64(1000)
	maxCPU := 80.0
	in := &benchmark.Thresholds{MaxDuration: &maxDur, MaxMemoryDelta: &maxMem, MaxCPUPercent: &maxCPU}

	out := CIProfile().ScaleThresholds(in)
	require.NotNil(t, out)
	assert.Equal(t, 150*time.Millisecond, *out.MaxDuration)
	assert.Equal(t, int64(1250), *out.MaxMemoryDelta)
	assert.Equal(t, 80.0, *out.MaxCPUPercent)

	// The original is untouched.
	assert.Equal(t, 100*time.Millisecond, *in.MaxDuration)

	assert.Nil(t, DeveloperProfile().ScaleThresholds(nil))
}
