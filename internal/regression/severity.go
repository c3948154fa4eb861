package regression

import "encoding/json"

// Severity classifies how bad a regression is. Values are ordered: a higher
// severity always compares greater.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityMinor
	SeverityModerate
	SeverityMajor
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityMinor:
		return "minor"
	case SeverityModerate:
		return "moderate"
	case SeverityMajor:
		return "major"
	case SeverityCritical:
		return "critical"
	default:
		return "none"
	}
}

func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Severity) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	switch str {
	case "minor":
		*s = SeverityMinor
	case "moderate":
		*s = SeverityModerate
	case "major":
		*s = SeverityMajor
	case "critical":
		*s = SeverityCritical
	default:
		*s = SeverityNone
	}
	return nil
}

// Ladder maps a percentage delta to a severity tier. Boundaries are
// inclusive: a delta exactly at a tier's threshold lands in that tier.
type Ladder struct {
	Minor    float64 `json:"minor"`
	Moderate float64 `json:"moderate"`
	Major    float64 `json:"major"`
	Critical float64 `json:"critical"`
}

// Classify returns the tier for a percentage delta. Improvements (negative
// deltas) are never regressions.
func (l Ladder) Classify(pct float64) Severity {
	switch {
	case pct >= l.Critical:
		return SeverityCritical
	case pct >= l.Major:
		return SeverityMajor
	case pct >= l.Moderate:
		return SeverityModerate
	case pct >= l.Minor:
		return SeverityMinor
	default:
		return SeverityNone
	}
}
