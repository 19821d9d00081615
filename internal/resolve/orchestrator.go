// Package resolve drives classification, bounded-concurrency dispatch,
// result merging and progress accounting for a whole record set.
package resolve

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/toolspec-cli/internal/classify"
	"github.com/sells-group/toolspec-cli/internal/model"
	"github.com/sells-group/toolspec-cli/internal/resilience"
	"github.com/sells-group/toolspec-cli/internal/supplier"
)

// DefaultMaxConcurrent is the hard ceiling on simultaneous in-flight
// resolutions, rendered-browser sub-steps included.
const DefaultMaxConcurrent = 5

// Publisher receives progress snapshots as records complete.
type Publisher func(model.ProgressSnapshot)

// Orchestrator resolves a job's records through the registered supplier
// strategies under the retry/timeout envelope.
type Orchestrator struct {
	registry      *supplier.Registry
	envelope      *resilience.Envelope
	maxConcurrent int
}

// New creates an Orchestrator. maxConcurrent <= 0 selects the default
// pool bound.
func New(reg *supplier.Registry, env *resilience.Envelope, maxConcurrent int) *Orchestrator {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	return &Orchestrator{registry: reg, envelope: env, maxConcurrent: maxConcurrent}
}

// Run resolves every record in the job. Records are dispatched in input
// order and may complete in any order; the final snapshot is published
// strictly after every completion has been merged and reflects exact
// totals. Cancelling ctx aborts in-flight attempts promptly; records
// merged so far keep their values.
func (o *Orchestrator) Run(ctx context.Context, job *model.Job, publish Publisher) error {
	if publish == nil {
		publish = func(model.ProgressSnapshot) {}
	}
	prog := job.Progress

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(o.maxConcurrent)

	for i := range job.Records {
		rec := &job.Records[i]

		// Snapshot showing the item about to start. Best-effort under
		// concurrency: by the time an observer reads it another worker
		// may have finished.
		prog.SetCurrent(rec.Description)
		publish(prog.Snapshot())

		g.Go(func() error {
			res, success := o.resolveOne(gCtx, rec)
			job.UpdateRecord(i, func(r *model.Record) {
				mergeResult(r, res)
			})
			prog.Complete(success)

			// Point the display at the next queued record. Positional,
			// not authoritative: completions land out of order.
			if next := prog.Snapshot().Completed; next < len(job.Records) {
				prog.SetCurrent(job.Records[next].Description)
			}
			publish(prog.Snapshot())
			return nil
		})
	}

	_ = g.Wait()

	prog.SetCurrent("")
	publish(prog.Snapshot())

	return ctx.Err()
}

// resolveOne classifies a record and runs the matching strategy through
// the envelope. The bool is the progress outcome: a partial result still
// counts as progress, not failure.
func (o *Orchestrator) resolveOne(ctx context.Context, rec *model.Record) (*model.SpecResult, bool) {
	sup, tool := classify.Record(rec)

	// Unsupported tool types are terminal: all slots not-available, no
	// network attempt, counted as success (absence of data is not a
	// failure when the type is out of scope).
	if tool == model.ToolUnsupported {
		res := model.NewSpecResult()
		res.Success = true
		return res, true
	}

	strat, ok := o.registry.Lookup(sup)
	if !ok {
		zap.L().Warn("no strategy for supplier",
			zap.String("channel", rec.Channel),
			zap.String("item", rec.Description),
		)
		return model.FailedResult(fmt.Sprintf("unknown supplier %q", rec.Channel)), false
	}

	res := o.envelope.Resolve(ctx, rec.Description, strat.AttemptTimeout(), func(actx context.Context) (*model.SpecResult, error) {
		return strat.Resolve(actx, rec)
	})

	success := res.Success || res.HasData()
	if !success {
		zap.L().Debug("record resolution failed",
			zap.String("item", rec.Description),
			zap.String("error", res.Err),
		)
	}
	return res, success
}

// mergeResult writes resolved slots into the record, fill-if-absent only:
// a pre-existing value is never overwritten, and the Sentinel is never
// written into a record (it is materialized at export for fields that
// remain empty).
func mergeResult(rec *model.Record, res *model.SpecResult) {
	for slot := model.Slot(0); slot < model.NumSlots; slot++ {
		v := res.Get(slot)
		if v == "" || v == model.Sentinel {
			continue
		}
		if rec.Filled(slot) {
			continue
		}
		rec.SetField(slot, v)
	}
}

// Decode runs the pattern-decode stage over a job's records: a no-network
// best-effort fill invoked explicitly by the caller, never chained
// automatically after a failed page resolution. Merge semantics are the
// same fill-if-absent policy as page resolution.
func Decode(job *model.Job, decode func(desc string, sup model.Supplier, tool model.ToolType) *model.SpecResult) {
	for i := range job.Records {
		job.UpdateRecord(i, func(rec *model.Record) {
			sup, tool := classify.Record(rec)
			mergeResult(rec, decode(rec.Description, sup, tool))
		})
	}
}
