package benchmark

import (
	"math"
	"time"
)

// Summarize computes the aggregate statistics for one run's benchmarks.
// Standard deviation is the population form (divide by N), matching what the
// rest of the pipeline expects for small fixed iteration counts.
func Summarize(benchmarks []Benchmark) Summary {
	var s Summary
	if len(benchmarks) == 0 {
		return s
	}

	n := float64(len(benchmarks))
	var sumDur, sumSq float64
	var sumMem float64
	var sumCPU float64
	var cpuCount int

	s.MinDuration = benchmarks[0].Sample.Duration
	s.MaxDuration = benchmarks[0].Sample.Duration

	for _, b := range benchmarks {
		d := b.Sample.Duration
		sumDur += float64(d)
		if d < s.MinDuration {
			s.MinDuration = d
		}
		if d > s.MaxDuration {
			s.MaxDuration = d
		}
		sumMem += float64(b.Sample.MemoryDelta)
		if b.Sample.CPUPercent != nil {
			sumCPU += *b.Sample.CPUPercent
			cpuCount++
		}
		if b.Passed() {
			s.PassedIterations++
		} else {
			s.FailedIterations++
		}
	}

	mean := sumDur / n
	s.AverageDuration = time.Duration(mean)
	s.AverageMemoryDelta = sumMem / n

	for _, b := range benchmarks {
		diff := float64(b.Sample.Duration) - mean
		sumSq += diff * diff
	}
	s.StdDevDuration = time.Duration(math.Sqrt(sumSq / n))

	if cpuCount > 0 {
		avg := sumCPU / float64(cpuCount)
		s.AverageCPUPercent = &avg
	}

	return s
}
