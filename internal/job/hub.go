package job

import (
	"sync"

	"github.com/sells-group/toolspec-cli/internal/model"
)

// subBuffer is the per-subscriber channel depth. A subscriber that falls
// further behind misses intermediate snapshots rather than blocking the
// orchestrator.
const subBuffer = 16

// Hub broadcasts progress snapshots to subscribers keyed by job id.
// Publishing never blocks.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[chan model.ProgressSnapshot]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan model.ProgressSnapshot]struct{})}
}

// Subscribe registers for a job's snapshots. The returned cancel func must
// be called when the subscriber is done; the channel is closed after the
// finished snapshot or on cancel.
func (h *Hub) Subscribe(jobID string) (<-chan model.ProgressSnapshot, func()) {
	ch := make(chan model.ProgressSnapshot, subBuffer)

	h.mu.Lock()
	if h.subs[jobID] == nil {
		h.subs[jobID] = make(map[chan model.ProgressSnapshot]struct{})
	}
	h.subs[jobID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			if set, ok := h.subs[jobID]; ok {
				if _, live := set[ch]; live {
					delete(set, ch)
					close(ch)
				}
				if len(set) == 0 {
					delete(h.subs, jobID)
				}
			}
			h.mu.Unlock()
		})
	}
	return ch, cancel
}

// Publish delivers a snapshot to every subscriber of the job, dropping it
// for subscribers whose buffer is full. The finished snapshot is never
// dropped: a full subscriber loses its oldest buffered snapshot instead,
// and the channel closes only after the final totals are in the buffer.
func (h *Hub) Publish(jobID string, snap model.ProgressSnapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.subs[jobID]
	if !ok {
		return
	}
	for ch := range set {
		if snap.Finished {
			sendEvicting(ch, snap)
			delete(set, ch)
			close(ch)
			continue
		}
		select {
		case ch <- snap:
		default:
		}
	}
	if snap.Finished {
		delete(h.subs, jobID)
	}
}

// sendEvicting places snap in the channel, discarding stale buffered
// snapshots until it fits. Only called under h.mu, so no other publisher
// can refill the buffer between the drain and the retry.
func sendEvicting(ch chan model.ProgressSnapshot, snap model.ProgressSnapshot) {
	for {
		select {
		case ch <- snap:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
