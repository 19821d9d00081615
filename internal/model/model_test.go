package model

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpecResultDefaults(t *testing.T) {
	r := NewSpecResult()
	for s := Slot(0); s < NumSlots; s++ {
		assert.Equal(t, Sentinel, r.Get(s))
	}
	assert.False(t, r.Success)
	assert.False(t, r.HasData())
}

func TestSpecResultSetIgnoresEmpty(t *testing.T) {
	r := NewSpecResult()
	r.Set(SlotDiameter, "")
	assert.Equal(t, Sentinel, r.Get(SlotDiameter))

	r.Set(SlotDiameter, "10 mm")
	assert.Equal(t, "10 mm", r.Get(SlotDiameter))
	assert.True(t, r.HasData())
}

func TestFailedResult(t *testing.T) {
	r := FailedResult("deadline exceeded after 3 attempts")
	assert.False(t, r.Success)
	assert.Equal(t, "deadline exceeded after 3 attempts", r.Err)
	assert.False(t, r.HasData())
}

func TestRecordFieldRoundTrip(t *testing.T) {
	r := &Record{}
	for s := Slot(0); s < NumSlots; s++ {
		assert.False(t, r.Filled(s))
		r.SetField(s, "v")
		assert.Equal(t, "v", r.Field(s))
		assert.True(t, r.Filled(s))
	}
}

func TestRecordSentinelNotFilled(t *testing.T) {
	r := &Record{Diameter: Sentinel}
	assert.False(t, r.Filled(SlotDiameter))
}

func TestProgressCounters(t *testing.T) {
	p := NewProgress(4)

	p.Complete(true)
	p.Complete(true)
	p.Complete(false)

	snap := p.Snapshot()
	assert.Equal(t, 4, snap.Total)
	assert.Equal(t, 3, snap.Completed)
	assert.Equal(t, 2, snap.Success)
	assert.Equal(t, 1, snap.Fail)
	assert.False(t, snap.Finished)
	assert.InDelta(t, 75.0, snap.Percent, 0.001)

	p.Complete(false)
	snap = p.Snapshot()
	assert.True(t, snap.Finished)
	assert.InDelta(t, 100.0, snap.Percent, 0.001)
}

func TestProgressCurrent(t *testing.T) {
	p := NewProgress(1)
	assert.Equal(t, "", p.Snapshot().Current)

	p.SetCurrent("SD1103-1000-035-10R1")
	assert.Equal(t, "SD1103-1000-035-10R1", p.Snapshot().Current)
}

func TestProgressConcurrentCompletions(t *testing.T) {
	const n = 100
	p := NewProgress(n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(ok bool) {
			defer wg.Done()
			p.Complete(ok)
		}(i%2 == 0)
	}
	wg.Wait()

	snap := p.Snapshot()
	require.Equal(t, n, snap.Completed)
	assert.Equal(t, n/2, snap.Success)
	assert.Equal(t, n/2, snap.Fail)
	assert.Equal(t, snap.Completed, snap.Success+snap.Fail)
	assert.True(t, snap.Finished)
}

// TestProgressSnapshotInvariantUnderLoad hammers Complete from many
// goroutines while a single observer polls Snapshot, asserting that
// success + fail <= completed <= total holds at every observation and
// that the counters never go backwards between polls.
func TestProgressSnapshotInvariantUnderLoad(t *testing.T) {
	const n = 500
	p := NewProgress(n)

	done := make(chan struct{})
	var prev ProgressSnapshot
	go func() {
		defer close(done)
		for {
			snap := p.Snapshot()
			ok := assert.LessOrEqual(t, snap.Success+snap.Fail, snap.Completed) &&
				assert.LessOrEqual(t, snap.Completed, snap.Total) &&
				assert.GreaterOrEqual(t, snap.Completed, prev.Completed) &&
				assert.GreaterOrEqual(t, snap.Success, prev.Success) &&
				assert.GreaterOrEqual(t, snap.Fail, prev.Fail)
			if !ok {
				return
			}
			prev = snap
			if snap.Success+snap.Fail == n {
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(ok bool) {
			defer wg.Done()
			p.Complete(ok)
		}(i%3 != 0)
	}
	wg.Wait()
	<-done

	snap := p.Snapshot()
	assert.Equal(t, n, snap.Completed)
	assert.Equal(t, snap.Completed, snap.Success+snap.Fail)
}

func TestProgressZeroTotal(t *testing.T) {
	p := NewProgress(0)
	snap := p.Snapshot()
	assert.True(t, snap.Finished)
	assert.Equal(t, 0.0, snap.Percent)
}
