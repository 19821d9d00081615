// Package job holds the in-memory job registry and the progress broadcast
// hub consumed by the CLI and the HTTP surface.
package job

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sells-group/toolspec-cli/internal/model"
)

// DefaultRetention is how long finished jobs stay resident before pruning.
const DefaultRetention = 24 * time.Hour

// Registry maps a job id to its record set and progress. Records are
// handed back by copy; the orchestrator mutates the job's own slice.
type Registry struct {
	mu        sync.RWMutex
	jobs      map[string]*model.Job
	retention time.Duration
}

// NewRegistry creates a registry with the given retention window
// (<= 0 selects the default).
func NewRegistry(retention time.Duration) *Registry {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Registry{
		jobs:      make(map[string]*model.Job),
		retention: retention,
	}
}

// Create registers a new job over the given records and returns it.
func (r *Registry) Create(records []model.Record) *model.Job {
	j := model.NewJob(uuid.New().String(), records)
	r.mu.Lock()
	r.jobs[j.ID] = j
	r.mu.Unlock()
	return j
}

// Get returns the job for id.
func (r *Registry) Get(id string) (*model.Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	j, ok := r.jobs[id]
	return j, ok
}

// Records returns a copy of the job's current record set, usable both as
// a preview before resolution and as the result after. The copy is taken
// under the job's record lock, so reading mid-run is safe.
func (r *Registry) Records(id string) ([]model.Record, bool) {
	r.mu.RLock()
	j, ok := r.jobs[id]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return j.SnapshotRecords(), true
}

// Snapshot returns the job's current progress.
func (r *Registry) Snapshot(id string) (model.ProgressSnapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	j, ok := r.jobs[id]
	if !ok {
		return model.ProgressSnapshot{}, false
	}
	return j.Progress.Snapshot(), true
}

// Prune drops jobs created before the retention window. Returns how many
// were removed.
func (r *Registry) Prune(now time.Time) int {
	cutoff := now.Add(-r.retention)
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, j := range r.jobs {
		if j.CreatedAt.Before(cutoff) {
			delete(r.jobs, id)
			n++
		}
	}
	return n
}

// Len returns the number of resident jobs.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.jobs)
}
