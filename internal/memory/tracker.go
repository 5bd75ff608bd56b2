// Package memory implements the global reservation counter that backs
// the memory budget described in spec section 4.3: a single atomic
// count of reserved bytes checked against a fixed ceiling. It is
// adapted from the teacher's internal/engine/memory_controller.go, with
// the cross-tenant eviction sweep removed — KVMemo has a single
// keyspace, so reclaiming bytes is the Engine/eviction.Manager's job,
// not the tracker's.
package memory

import (
	"sync/atomic"

	"github.com/kvmemo/kvmemo/internal/errs"
)

// Tracker holds a relaxed-ordering atomic byte counter against a fixed
// ceiling. maxBytes of 0 means unlimited: Reserve always succeeds and
// OverLimit is always false.
type Tracker struct {
	used     atomic.Int64
	maxBytes int64
}

// New returns a Tracker with the given ceiling.
func New(maxBytes int64) *Tracker {
	return &Tracker{maxBytes: maxBytes}
}

// Reserve adds n to the counter and reports whether the counter
// remains at or below the ceiling afterward. It always adds a positive n —
// callers that want to reject a reservation outright, rather than
// accept the write and let eviction reclaim the excess, must Release
// on a false return; the Engine deliberately does not do this,
// accepting writes and relying on process_evictions to catch up
// (spec section 4.8, "if over_limit, immediately process_evictions").
func (t *Tracker) Reserve(n int64) bool {
	if n <= 0 {
		return !t.OverLimit()
	}
	newUsed := t.used.Add(n)
	if t.maxBytes == 0 {
		return true
	}
	return newUsed <= t.maxBytes
}

// Release subtracts n from the counter. Callers must never release
// more than they reserved; an underflow means some caller's reserve/
// release accounting has drifted from reality, which spec sections 4.3
// and 7 both treat as a fatal invariant violation rather than something
// to paper over by clamping.
func (t *Tracker) Release(n int64) {
	if n <= 0 {
		return
	}
	if t.used.Add(-n) < 0 {
		errs.MustNotHappen("memory tracker underflow: released %d bytes more than reserved", n)
	}
}

// OverLimit is a snapshot read of the pressure predicate. Eventual
// consistency is fine here — the eviction path re-checks before acting.
func (t *Tracker) OverLimit() bool {
	if t.maxBytes == 0 {
		return false
	}
	return t.used.Load() > t.maxBytes
}

// Used returns the current reserved-byte count.
func (t *Tracker) Used() int64 {
	return t.used.Load()
}

// Capacity returns the configured ceiling (0 == unlimited).
func (t *Tracker) Capacity() int64 {
	return t.maxBytes
}
