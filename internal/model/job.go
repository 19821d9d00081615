package model

import (
	"sync"
	"time"
)

// Job aggregates one uploaded record set with its progress. The job owns
// its records exclusively; while a resolution is running, all record
// writes go through UpdateRecord and all reads by outside observers
// through SnapshotRecords, so a client polling records mid-run never
// races the merge step.
type Job struct {
	ID        string    `json:"id"`
	Records   []Record  `json:"records"`
	Progress  *Progress `json:"-"`
	CreatedAt time.Time `json:"created_at"`

	mu sync.RWMutex
}

// NewJob creates a job over the given records with fresh progress.
func NewJob(id string, records []Record) *Job {
	return &Job{
		ID:        id,
		Records:   records,
		Progress:  NewProgress(len(records)),
		CreatedAt: time.Now().UTC(),
	}
}

// UpdateRecord applies fn to the record at index i under the job's write
// lock.
func (j *Job) UpdateRecord(i int, fn func(*Record)) {
	j.mu.Lock()
	defer j.mu.Unlock()
	fn(&j.Records[i])
}

// SnapshotRecords returns a copy of the current record set, consistent
// with respect to in-flight merges.
func (j *Job) SnapshotRecords() []Record {
	j.mu.RLock()
	defer j.mu.RUnlock()
	out := make([]Record, len(j.Records))
	copy(out, j.Records)
	return out
}
