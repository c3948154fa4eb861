package sampler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func busyWork(d time.Duration) Op {
	return func(ctx context.Context) error {
		deadline := time.Now().Add(d)
		for time.Now().Before(deadline) {
		}
		return nil
	}
}

func TestMeasure_Duration(t *testing.T) {
	s, err := Measure(context.Background(), busyWork(10*time.Millisecond), Options{})
	require.NoError(t, err)

	assert.GreaterOrEqual(t, s.Duration, 10*time.Millisecond)
	assert.Less(t, s.Duration, 5*time.Second)
	assert.False(t, s.Timestamp.IsZero())
}

func TestMeasure_MemoryDelta(t *testing.T) {
	var sink []byte
	op := func(ctx context.Context) error {
		sink = make([]byte, 8<<20)
		return nil
	}

	s, err := Measure(context.Background(), op, Options{CollectMemory: true})
	require.NoError(t, err)
	_ = sink

	assert.NotZero(t, s.MemoryBefore)
	assert.NotZero(t, s.MemoryAfter)
	// An 8MB allocation held across the measurement should dominate any GC
	// noise in the delta.
	assert.Greater(t, s.MemoryDelta, int64(4<<20))
}

func TestMeasure_MemoryDisabled(t *testing.T) {
	s, err := Measure(context.Background(), busyWork(time.Millisecond), Options{})
	require.NoError(t, err)
	assert.Zero(t, s.MemoryBefore)
	assert.Zero(t, s.MemoryAfter)
	assert.Zero(t, s.MemoryDelta)
}

func TestMeasure_CPUFastOpOmitted(t *testing.T) {
	// The op finishes long before the first 100ms poll, so no CPU samples
	// are collected and the field must be absent, not zero.
	op := func(ctx context.Context) error { return nil }
	s, err := Measure(context.Background(), op, Options{
		CollectCPU:     true,
		SampleInterval: 100 * time.Millisecond,
	})
	require.NoError(t, err)
	assert.Nil(t, s.CPUPercent)
}

func TestMeasure_CPUCollected(t *testing.T) {
	s, err := Measure(context.Background(), busyWork(60*time.Millisecond), Options{
		CollectCPU:     true,
		SampleInterval: 5 * time.Millisecond,
	})
	require.NoError(t, err)

	if s.CPUPercent == nil {
		t.Skip("no CPU samples collected on this platform")
	}
	assert.GreaterOrEqual(t, *s.CPUPercent, 0.0)
}

func TestMeasure_ErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	op := func(ctx context.Context) error { return boom }

	s, err := Measure(context.Background(), op, Options{})
	assert.ErrorIs(t, err, boom)
	// The sample still carries whatever was captured before the failure.
	assert.False(t, s.Timestamp.IsZero())
}
