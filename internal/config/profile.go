package config

import (
	"os"
	"time"

	"perfbench/internal/benchmark"
)

// Profile tunes the harness for the environment it runs in. CI machines are
// noisier and slower than developer workstations, so the CI profile loosens
// thresholds and runs fewer iterations to keep pipeline time down, while the
// developer profile measures more and judges strictly.
type Profile struct {
	Name              string
	DefaultIterations int
	// DurationSlack and MemorySlack are multipliers applied to configured
	// thresholds. 1.0 means no slack.
	DurationSlack float64
	MemorySlack   float64
}

// DeveloperProfile is the strict default: thresholds as configured, five
// iterations when none are requested.
func DeveloperProfile() Profile {
	return Profile{Name: "developer", DefaultIterations: 5, DurationSlack: 1.0, MemorySlack: 1.0}
}

// CIProfile loosens thresholds by 50% for duration and 25% for memory and
// defaults to fewer iterations than the developer profile.
func CIProfile() Profile {
	return Profile{Name: "ci", DefaultIterations: 2, DurationSlack: 1.5, MemorySlack: 1.25}
}

// ActiveProfile picks the profile from the environment. Any non-empty CI
// variable selects the CI profile, matching how CI providers advertise
// themselves.
func ActiveProfile() Profile {
	if os.Getenv("CI") != "" {
		return CIProfile()
	}
	return DeveloperProfile()
}

// Apply fills in the profile's iteration default when the user configured
// none. An explicit iteration count always wins over the profile.
func (p Profile) Apply(s *Settings) {
	if s.Iterations <= 0 {
		s.Iterations = p.DefaultIterations
	}
}

// ScaleThresholds returns a copy of t with the profile's slack applied.
// A nil input stays nil.
func (p Profile) ScaleThresholds(t *benchmark.Thresholds) *benchmark.Thresholds {
	if t == nil {
		return nil
	}
	out := &benchmark.Thresholds{MaxCPUPercent: t.MaxCPUPercent}
	if t.MaxDuration != nil {
		scaled := time.Duration(float64(*t.MaxDuration) * p.DurationSlack)
		out.MaxDuration = &scaled
	}
	if t.MaxMemoryDelta != nil {
		scaled := int64(float64(*t.MaxMemoryDelta) * p.MemorySlack)
		out.MaxMemoryDelta = &scaled
	}
	return out
}
