// Package metrics defines the metrics capability KVMemo's components
// report through, with Noop, Simple (atomic counters), and Prometheus
// implementations. The Interface/Noop/Simple shape is grounded directly
// on amakane-hakari-kavos's internal/metrics package; the Prometheus
// variant is new, wiring github.com/prometheus/client_golang — a
// dependency the teacher also carries but only ever wired through its
// own ServerMetrics struct rather than through client_golang itself.
package metrics

// Interface is the capability every engine/server component reports
// activity through.
type Interface interface {
	IncHit()
	IncMiss()
	IncSet()
	IncDelete()
	AddEvicted(n int)
	AddExpired(n int)
	SetMemoryUsed(bytes int64)
	SetKeyCount(n int)
}

// Noop discards every call; used when metrics are not configured.
type Noop struct{}

func (Noop) IncHit()              {}
func (Noop) IncMiss()             {}
func (Noop) IncSet()              {}
func (Noop) IncDelete()           {}
func (Noop) AddEvicted(int)       {}
func (Noop) AddExpired(int)       {}
func (Noop) SetMemoryUsed(int64)  {}
func (Noop) SetKeyCount(int)      {}
