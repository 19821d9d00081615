package model

// SpecResult is the outcome of one resolution attempt: exactly six generic
// attribute slots, each a value or the Sentinel. Immutable after creation.
type SpecResult struct {
	Slots   [NumSlots]string `json:"slots"`
	Success bool             `json:"success"`
	Err     string           `json:"error,omitempty"`
}

// NewSpecResult returns a result with every slot set to the Sentinel.
func NewSpecResult() *SpecResult {
	r := &SpecResult{}
	for i := range r.Slots {
		r.Slots[i] = Sentinel
	}
	return r
}

// FailedResult returns an all-Sentinel result carrying an error message.
func FailedResult(msg string) *SpecResult {
	r := NewSpecResult()
	r.Err = msg
	return r
}

// Set writes a slot value, ignoring empty strings.
func (r *SpecResult) Set(s Slot, v string) {
	if v == "" {
		return
	}
	r.Slots[s] = v
}

// Get returns the value in the given slot.
func (r *SpecResult) Get(s Slot) string {
	return r.Slots[s]
}

// HasData reports whether any slot holds a non-Sentinel value.
func (r *SpecResult) HasData() bool {
	for _, v := range r.Slots {
		if v != "" && v != Sentinel {
			return true
		}
	}
	return false
}
