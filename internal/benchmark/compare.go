package benchmark

import (
	"context"
	"fmt"
	"math"
)

// DefaultTieThresholdPct is the duration delta, in percent, under which two
// implementations are considered equivalent.
const DefaultTieThresholdPct = 5.0

// Comparison reports which of two implementations is faster.
type Comparison struct {
	// Winner is the name of the faster implementation, or "tie" when the
	// mean durations are within the tie threshold of each other.
	Winner string `json:"winner"`
	// DeltaPercent is (b − a) / a × 100 by mean duration. Negative means b
	// is faster.
	DeltaPercent float64     `json:"delta_percent"`
	A            *TestResult `json:"a"`
	B            *TestResult `json:"b"`
}

// Compare runs two implementations under matching measurement settings and
// reports the faster one by mean duration. tiePct <= 0 selects the default.
func (r *Runner) Compare(ctx context.Context, a, b TestFunc, cfgA, cfgB Config, tiePct float64) (*Comparison, error) {
	if tiePct <= 0 {
		tiePct = DefaultTieThresholdPct
	}

	resA, err := r.Run(ctx, a, cfgA)
	if err != nil {
		return nil, fmt.Errorf("comparing %q: %w", cfgA.Name, err)
	}
	resB, err := r.Run(ctx, b, cfgB)
	if err != nil {
		return nil, fmt.Errorf("comparing %q: %w", cfgB.Name, err)
	}

	cmp := &Comparison{A: resA, B: resB}

	durA := float64(resA.Summary.AverageDuration)
	durB := float64(resB.Summary.AverageDuration)
	if durA > 0 {
		cmp.DeltaPercent = (durB - durA) / durA * 100
	}

	switch {
	case math.Abs(cmp.DeltaPercent) <= tiePct:
		cmp.Winner = "tie"
	case durB < durA:
		cmp.Winner = cfgB.Name
	default:
		cmp.Winner = cfgA.Name
	}
	return cmp, nil
}
