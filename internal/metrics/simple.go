package metrics

import "sync/atomic"

// Simple is an in-process atomic-counter implementation, useful in
// tests and for the /v1/stats JSON endpoint where pulling in a full
// Prometheus registry would be overkill.
type Simple struct {
	Hits       atomic.Uint64
	Misses     atomic.Uint64
	Sets       atomic.Uint64
	Deletes    atomic.Uint64
	Evicted    atomic.Uint64
	Expired    atomic.Uint64
	MemoryUsed atomic.Int64
	KeyCount   atomic.Int64
}

// NewSimple returns a zeroed Simple.
func NewSimple() *Simple { return &Simple{} }

func (m *Simple) IncHit()    { m.Hits.Add(1) }
func (m *Simple) IncMiss()   { m.Misses.Add(1) }
func (m *Simple) IncSet()    { m.Sets.Add(1) }
func (m *Simple) IncDelete() { m.Deletes.Add(1) }

func (m *Simple) AddEvicted(n int) {
	if n > 0 {
		m.Evicted.Add(uint64(n))
	}
}

func (m *Simple) AddExpired(n int) {
	if n > 0 {
		m.Expired.Add(uint64(n))
	}
}

func (m *Simple) SetMemoryUsed(bytes int64) { m.MemoryUsed.Store(bytes) }
func (m *Simple) SetKeyCount(n int)         { m.KeyCount.Store(int64(n)) }

// Snapshot is a point-in-time read of every counter, for JSON encoding
// on the admin HTTP surface.
type Snapshot struct {
	Hits       uint64 `json:"hits"`
	Misses     uint64 `json:"misses"`
	Sets       uint64 `json:"sets"`
	Deletes    uint64 `json:"deletes"`
	Evicted    uint64 `json:"evicted"`
	Expired    uint64 `json:"expired"`
	MemoryUsed int64  `json:"memory_used_bytes"`
	KeyCount   int64  `json:"key_count"`
}

func (m *Simple) Snapshot() Snapshot {
	return Snapshot{
		Hits:       m.Hits.Load(),
		Misses:     m.Misses.Load(),
		Sets:       m.Sets.Load(),
		Deletes:    m.Deletes.Load(),
		Evicted:    m.Evicted.Load(),
		Expired:    m.Expired.Load(),
		MemoryUsed: m.MemoryUsed.Load(),
		KeyCount:   m.KeyCount.Load(),
	}
}
