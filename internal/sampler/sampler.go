package sampler

import (
	"context"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// Op is a single operation to be measured. It must be side-effect free with
// respect to the sampler itself; whatever it does to the rest of the world is
// its own business.
type Op func(ctx context.Context) error

// Options controls which metrics are captured alongside the duration.
type Options struct {
	CollectMemory bool
	CollectCPU    bool
	// SampleInterval is the CPU polling interval. Zero means DefaultInterval.
	SampleInterval time.Duration
}

// DefaultInterval is the CPU polling interval used when none is configured.
const DefaultInterval = 10 * time.Millisecond

// Sample is one captured measurement. Immutable once returned.
type Sample struct {
	Duration     time.Duration `json:"duration"`
	MemoryBefore uint64        `json:"memory_before"`
	MemoryAfter  uint64        `json:"memory_after"`
	// MemoryDelta may be negative: a GC cycle during the operation can leave
	// the heap smaller than it started.
	MemoryDelta int64          `json:"memory_delta"`
	CPUPercent  *float64       `json:"cpu_percent,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// Measure executes op exactly once and returns its measurement. The duration
// covers the full call, including any internal waiting the operation does.
// If op fails, the error is returned untouched along with the sample captured
// so far; Measure never recovers on the operation's behalf.
//
// CPU usage is polled at the configured interval while op runs and averaged.
// If op finishes before the first poll completes, CPUPercent is left nil
// rather than reported as zero.
func Measure(ctx context.Context, op Op, opts Options) (Sample, error) {
	s := Sample{Timestamp: time.Now()}

	var cpu *cpuPoller
	if opts.CollectCPU {
		cpu = startCPUPoller(opts.interval())
	}

	if opts.CollectMemory {
		s.MemoryBefore = heapInUse()
	}

	start := time.Now()
	err := op(ctx)
	s.Duration = time.Since(start)

	if opts.CollectMemory {
		s.MemoryAfter = heapInUse()
		s.MemoryDelta = int64(s.MemoryAfter) - int64(s.MemoryBefore)
	}

	if cpu != nil {
		s.CPUPercent = cpu.stop()
	}

	return s, err
}

func (o Options) interval() time.Duration {
	if o.SampleInterval > 0 {
		return o.SampleInterval
	}
	return DefaultInterval
}

func heapInUse() uint64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.HeapAlloc
}

// cpuPoller samples process CPU usage on a fixed tick until stopped.
type cpuPoller struct {
	quit    chan struct{}
	done    chan struct{}
	samples []float64
}

func startCPUPoller(interval time.Duration) *cpuPoller {
	p := &cpuPoller{
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}

	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		// CPU collection is best-effort; without a process handle we simply
		// report no samples.
		close(p.done)
		return p
	}
	// Prime the counter so subsequent Percent(0) calls report usage since the
	// previous poll instead of since process start.
	_, _ = proc.Percent(0)

	go func() {
		defer close(p.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-p.quit:
				return
			case <-ticker.C:
				pct, err := proc.Percent(0)
				if err != nil {
					continue
				}
				p.samples = append(p.samples, pct)
			}
		}
	}()

	return p
}

// stop halts polling and returns the average of collected samples, or nil if
// nothing was collected before the operation finished.
func (p *cpuPoller) stop() *float64 {
	select {
	case <-p.done:
	default:
		close(p.quit)
		<-p.done
	}

	if len(p.samples) == 0 {
		return nil
	}
	var sum float64
	for _, v := range p.samples {
		sum += v
	}
	avg := sum / float64(len(p.samples))
	return &avg
}
