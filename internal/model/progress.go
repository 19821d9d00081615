package model

import "sync/atomic"

// Progress tracks resolution totals for a job. Counters are atomic: the
// orchestrator is the only writer, snapshot readers never block it.
// Invariant within a run: success + fail <= completed <= total, all three
// monotonically non-decreasing.
type Progress struct {
	total     int64
	completed atomic.Int64
	success   atomic.Int64
	fail      atomic.Int64

	// current holds the description of the item believed to be in flight.
	// Under concurrency this is a best-effort display value: completions
	// land out of order, so it may name a record no worker is touching.
	current atomic.Value
}

// NewProgress creates a Progress for total records.
func NewProgress(total int) *Progress {
	p := &Progress{total: int64(total)}
	p.current.Store("")
	return p
}

// SetCurrent records the item description shown to progress observers.
func (p *Progress) SetCurrent(desc string) {
	p.current.Store(desc)
}

// Complete counts one finished record. completed is bumped before the
// outcome counter so that success + fail <= completed holds at every
// point a reader can observe.
func (p *Progress) Complete(success bool) {
	p.completed.Add(1)
	if success {
		p.success.Add(1)
	} else {
		p.fail.Add(1)
	}
}

// Snapshot returns a consistent-enough view for progress observers. The
// outcome counters are read before completed, mirroring the write order
// in Complete: any increments landing between the loads can only widen
// the success + fail <= completed gap, never invert it.
func (p *Progress) Snapshot() ProgressSnapshot {
	success := p.success.Load()
	fail := p.fail.Load()
	s := ProgressSnapshot{
		Total:     int(p.total),
		Completed: int(p.completed.Load()),
		Success:   int(success),
		Fail:      int(fail),
		Current:   p.current.Load().(string),
	}
	if s.Total > 0 {
		s.Percent = float64(s.Completed) / float64(s.Total) * 100
	}
	s.Finished = s.Completed >= s.Total
	return s
}

// ProgressSnapshot is the wire view of a Progress at one observation.
type ProgressSnapshot struct {
	Total     int     `json:"total"`
	Completed int     `json:"completed"`
	Success   int     `json:"success"`
	Fail      int     `json:"fail"`
	Current   string  `json:"current,omitempty"`
	Percent   float64 `json:"percent"`
	Finished  bool    `json:"finished"`
}
