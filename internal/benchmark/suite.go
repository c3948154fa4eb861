package benchmark

import (
	"context"
	"time"
)

// SuiteTest pairs an operation with its configuration.
type SuiteTest struct {
	Fn     TestFunc
	Config Config
}

// RunSuite executes the tests in order, one at a time. Member tests are never
// run concurrently for the same reason iterations are not.
func (r *Runner) RunSuite(ctx context.Context, tests []SuiteTest) (*SuiteResult, error) {
	suite := &SuiteResult{Results: make([]*TestResult, 0, len(tests))}

	var sumDur time.Duration
	for _, t := range tests {
		result, err := r.Run(ctx, t.Fn, t.Config)
		if err != nil {
			return nil, err
		}
		suite.Results = append(suite.Results, result)
		suite.TotalTests++
		suite.TotalIterations += len(result.Benchmarks)
		if result.Passed {
			suite.PassedTests++
		} else {
			suite.FailedTests++
		}
		sumDur += result.Summary.AverageDuration
	}

	if suite.TotalTests > 0 {
		suite.AverageDuration = sumDur / time.Duration(suite.TotalTests)
	}
	return suite, nil
}
