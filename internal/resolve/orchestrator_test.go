package resolve

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/toolspec-cli/internal/model"
	"github.com/sells-group/toolspec-cli/internal/resilience"
	"github.com/sells-group/toolspec-cli/internal/supplier"
)

type stubStrategy struct {
	name string
	fn   func(ctx context.Context, rec *model.Record) (*model.SpecResult, error)
}

func (s *stubStrategy) Name() string                  { return s.name }
func (s *stubStrategy) AttemptTimeout() time.Duration { return time.Second }
func (s *stubStrategy) Resolve(ctx context.Context, rec *model.Record) (*model.SpecResult, error) {
	return s.fn(ctx, rec)
}

func successResult(diameter string) *model.SpecResult {
	res := model.NewSpecResult()
	res.Set(model.SlotDiameter, diameter)
	res.Success = true
	return res
}

func fastEnvelope() *resilience.Envelope {
	return resilience.NewEnvelope(resilience.EnvelopeConfig{
		MaxAttempts:    1,
		AttemptTimeout: time.Second,
		RetryDelay:     time.Millisecond,
	})
}

func secoRecord(desc string) model.Record {
	return model.Record{Description: desc, TypeLabel: "SOLID ENDMILL", Channel: "Seco"}
}

func TestRunResolvesAllRecords(t *testing.T) {
	strat := &stubStrategy{name: "seco", fn: func(_ context.Context, rec *model.Record) (*model.SpecResult, error) {
		return successResult("10 mm"), nil
	}}
	o := New(supplier.NewRegistry(strat), fastEnvelope(), 2)

	job := model.NewJob("j1", []model.Record{
		secoRecord("A"), secoRecord("B"), secoRecord("C"),
	})

	err := o.Run(context.Background(), job, nil)
	require.NoError(t, err)

	snap := job.Progress.Snapshot()
	assert.Equal(t, 3, snap.Completed)
	assert.Equal(t, 3, snap.Success)
	assert.Equal(t, 0, snap.Fail)
	assert.True(t, snap.Finished)

	for _, rec := range job.Records {
		assert.Equal(t, "10 mm", rec.Diameter)
	}
}

func TestRunUnsupportedToolType(t *testing.T) {
	var strategyCalls atomic.Int32
	strat := &stubStrategy{name: "seco", fn: func(_ context.Context, rec *model.Record) (*model.SpecResult, error) {
		strategyCalls.Add(1)
		return successResult("10 mm"), nil
	}}
	o := New(supplier.NewRegistry(strat), fastEnvelope(), 2)

	job := model.NewJob("j1", []model.Record{
		secoRecord("A"),
		{Description: "B", TypeLabel: "THREAD MILL", Channel: "Seco"},
		secoRecord("C"),
	})

	require.NoError(t, o.Run(context.Background(), job, nil))

	snap := job.Progress.Snapshot()
	assert.Equal(t, 3, snap.Completed)
	// The unsupported record is a terminal success with no data and no
	// network attempt.
	assert.Equal(t, 3, snap.Success)
	assert.Equal(t, int32(2), strategyCalls.Load())
	assert.Empty(t, job.Records[1].Diameter)
}

func TestRunUnknownSupplier(t *testing.T) {
	o := New(supplier.NewRegistry(), fastEnvelope(), 1)
	job := model.NewJob("j1", []model.Record{
		{Description: "A", TypeLabel: "SOLID ENDMILL", Channel: "Guhring"},
	})

	require.NoError(t, o.Run(context.Background(), job, nil))

	snap := job.Progress.Snapshot()
	assert.Equal(t, 1, snap.Completed)
	assert.Equal(t, 1, snap.Fail)
}

func TestRunConcurrencyBound(t *testing.T) {
	const limit = 5
	var inFlight, peak atomic.Int32

	strat := &stubStrategy{name: "seco", fn: func(_ context.Context, rec *model.Record) (*model.SpecResult, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		inFlight.Add(-1)
		return successResult("10 mm"), nil
	}}

	o := New(supplier.NewRegistry(strat), fastEnvelope(), limit)

	records := make([]model.Record, 20)
	for i := range records {
		records[i] = secoRecord("item")
	}
	job := model.NewJob("j1", records)

	require.NoError(t, o.Run(context.Background(), job, nil))
	assert.LessOrEqual(t, peak.Load(), int32(limit))
	assert.Equal(t, 20, job.Progress.Snapshot().Completed)
}

func TestRunPartialResultCountsAsProgress(t *testing.T) {
	strat := &stubStrategy{name: "seco", fn: func(_ context.Context, rec *model.Record) (*model.SpecResult, error) {
		res := model.NewSpecResult()
		res.Set(model.SlotEdgeCount, "4")
		res.Err = "no attempt yielded sufficient data"
		return res, nil
	}}
	o := New(supplier.NewRegistry(strat), fastEnvelope(), 1)

	job := model.NewJob("j1", []model.Record{secoRecord("A")})
	require.NoError(t, o.Run(context.Background(), job, nil))

	snap := job.Progress.Snapshot()
	assert.Equal(t, 1, snap.Success, "partial data still counts as progress")
	assert.Equal(t, "4", job.Records[0].EdgeCount)
}

func TestRunFailedRecord(t *testing.T) {
	strat := &stubStrategy{name: "seco", fn: func(_ context.Context, rec *model.Record) (*model.SpecResult, error) {
		return nil, errors.New("site unreachable")
	}}
	o := New(supplier.NewRegistry(strat), fastEnvelope(), 1)

	job := model.NewJob("j1", []model.Record{secoRecord("A")})
	require.NoError(t, o.Run(context.Background(), job, nil))

	snap := job.Progress.Snapshot()
	assert.Equal(t, 1, snap.Fail)
	assert.Empty(t, job.Records[0].Diameter, "failed record keeps empty fields")
}

func TestRunFinalSnapshotExact(t *testing.T) {
	strat := &stubStrategy{name: "seco", fn: func(_ context.Context, rec *model.Record) (*model.SpecResult, error) {
		return successResult("10 mm"), nil
	}}
	o := New(supplier.NewRegistry(strat), fastEnvelope(), 3)

	records := make([]model.Record, 10)
	for i := range records {
		records[i] = secoRecord("item")
	}
	job := model.NewJob("j1", records)

	var mu sync.Mutex
	var snaps []model.ProgressSnapshot
	require.NoError(t, o.Run(context.Background(), job, func(s model.ProgressSnapshot) {
		mu.Lock()
		snaps = append(snaps, s)
		mu.Unlock()
	}))

	require.NotEmpty(t, snaps)
	last := snaps[len(snaps)-1]
	assert.True(t, last.Finished)
	assert.Equal(t, 10, last.Completed)
	assert.Equal(t, 10, last.Success)
	assert.Empty(t, last.Current)
}

// TestRunRecordReadsDuringRun polls the job's record set from another
// goroutine while the orchestrator is merging results, the way the HTTP
// records and export endpoints do mid-run. Every observed value must be
// either still-empty or a fully merged result; under -race this also
// proves the merge and the copy are synchronized.
func TestRunRecordReadsDuringRun(t *testing.T) {
	strat := &stubStrategy{name: "seco", fn: func(_ context.Context, rec *model.Record) (*model.SpecResult, error) {
		time.Sleep(time.Millisecond)
		return successResult("10 mm"), nil
	}}
	o := New(supplier.NewRegistry(strat), fastEnvelope(), 5)

	records := make([]model.Record, 50)
	for i := range records {
		records[i] = secoRecord("item")
	}
	job := model.NewJob("j1", records)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			for _, rec := range job.SnapshotRecords() {
				if rec.Diameter != "" && rec.Diameter != "10 mm" {
					t.Errorf("torn record value %q", rec.Diameter)
					return
				}
			}
			if job.Progress.Snapshot().Finished {
				return
			}
		}
	}()

	require.NoError(t, o.Run(context.Background(), job, nil))
	<-done

	for _, rec := range job.SnapshotRecords() {
		assert.Equal(t, "10 mm", rec.Diameter)
	}
}

// TestRunPublishedSnapshotCountersConsistent checks every snapshot handed
// to the publisher during a concurrent run, not just the final one:
// success + fail must never exceed completed, and completed never exceeds
// total.
func TestRunPublishedSnapshotCountersConsistent(t *testing.T) {
	strat := &stubStrategy{name: "seco", fn: func(_ context.Context, rec *model.Record) (*model.SpecResult, error) {
		if rec.Sequence%4 == 0 {
			return nil, errors.New("site unreachable")
		}
		return successResult("10 mm"), nil
	}}
	o := New(supplier.NewRegistry(strat), fastEnvelope(), 5)

	records := make([]model.Record, 40)
	for i := range records {
		records[i] = secoRecord("item")
		records[i].Sequence = i
	}
	job := model.NewJob("j1", records)

	var mu sync.Mutex
	var snaps []model.ProgressSnapshot
	require.NoError(t, o.Run(context.Background(), job, func(s model.ProgressSnapshot) {
		mu.Lock()
		snaps = append(snaps, s)
		mu.Unlock()
	}))

	require.NotEmpty(t, snaps)
	for _, s := range snaps {
		assert.LessOrEqual(t, s.Success+s.Fail, s.Completed)
		assert.LessOrEqual(t, s.Completed, s.Total)
	}
	last := snaps[len(snaps)-1]
	assert.Equal(t, 40, last.Completed)
	assert.Equal(t, last.Completed, last.Success+last.Fail)
}

func TestRunCancelledContext(t *testing.T) {
	release := make(chan struct{})
	strat := &stubStrategy{name: "seco", fn: func(ctx context.Context, rec *model.Record) (*model.SpecResult, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-release:
			return successResult("10 mm"), nil
		}
	}}
	o := New(supplier.NewRegistry(strat), fastEnvelope(), 1)

	records := make([]model.Record, 5)
	for i := range records {
		records[i] = secoRecord("item")
	}
	job := model.NewJob("j1", records)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
		close(release)
	}()

	err := o.Run(ctx, job, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMergeResultFillIfAbsent(t *testing.T) {
	rec := model.Record{Diameter: "12 mm"}
	res := model.NewSpecResult()
	res.Set(model.SlotDiameter, "10 mm")
	res.Set(model.SlotOverallLength, "72 mm")

	mergeResult(&rec, res)

	assert.Equal(t, "12 mm", rec.Diameter, "existing value is never overwritten")
	assert.Equal(t, "72 mm", rec.OverallLength)
}

func TestMergeResultNeverWritesSentinel(t *testing.T) {
	rec := model.Record{}
	mergeResult(&rec, model.NewSpecResult())

	for s := model.Slot(0); s < model.NumSlots; s++ {
		assert.Empty(t, rec.Field(s))
	}
}

func TestDecodeStage(t *testing.T) {
	job := model.NewJob("j1", []model.Record{
		{Description: "A", TypeLabel: "SOLID DRILL", Channel: "Seco", Diameter: "9 mm"},
	})

	Decode(job, func(desc string, sup model.Supplier, tool model.ToolType) *model.SpecResult {
		assert.Equal(t, model.SupplierSeco, sup)
		assert.Equal(t, model.ToolSolidDrill, tool)
		res := model.NewSpecResult()
		res.Success = true
		res.Set(model.SlotDiameter, "10 mm")
		res.Set(model.SlotShankDiameter, "10 mm")
		return res
	})

	assert.Equal(t, "9 mm", job.Records[0].Diameter)
	assert.Equal(t, "10 mm", job.Records[0].ShankDiameter)
}
