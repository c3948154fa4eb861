package benchmark

import "sync"

// Collector is a shared ledger of test results for one harness run. It is
// injected into the runner, detector and reporter instead of living as a
// process-global; tests construct their own for isolation.
type Collector struct {
	mu      sync.Mutex
	results []*TestResult
}

func NewCollector() *Collector {
	return &Collector{}
}

// Add appends a completed result to the ledger.
func (c *Collector) Add(result *TestResult) {
	if result == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, result)
}

// Results returns a copy of the collected results in insertion order.
func (c *Collector) Results() []*TestResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*TestResult, len(c.results))
	copy(out, c.results)
	return out
}

// Benchmarks returns every collected benchmark, flattened across results in
// insertion order. This is the shape the regression detector consumes.
func (c *Collector) Benchmarks() []Benchmark {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Benchmark
	for _, r := range c.results {
		out = append(out, r.Benchmarks...)
	}
	return out
}
