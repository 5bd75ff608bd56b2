package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus reports through github.com/prometheus/client_golang
// collectors registered against a caller-supplied registry, exposed by
// internal/httpapi via promhttp.Handler.
type Prometheus struct {
	hits       prometheus.Counter
	misses     prometheus.Counter
	sets       prometheus.Counter
	deletes    prometheus.Counter
	evicted    prometheus.Counter
	expired    prometheus.Counter
	memoryUsed prometheus.Gauge
	keyCount   prometheus.Gauge
}

// NewPrometheus registers KVMemo's collectors against reg and returns
// a Prometheus metrics reporter backed by them.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	p := &Prometheus{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kvmemo_get_hits_total",
			Help: "Total number of GET requests that found a live key.",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kvmemo_get_misses_total",
			Help: "Total number of GET requests that found no live key.",
		}),
		sets: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kvmemo_set_total",
			Help: "Total number of SET requests accepted.",
		}),
		deletes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kvmemo_delete_total",
			Help: "Total number of DEL requests processed.",
		}),
		evicted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kvmemo_evicted_total",
			Help: "Total number of keys removed by the eviction manager.",
		}),
		expired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kvmemo_expired_total",
			Help: "Total number of keys removed by TTL sweep or lazy expiry.",
		}),
		memoryUsed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kvmemo_memory_used_bytes",
			Help: "Current value of the memory tracker's reserved-byte counter.",
		}),
		keyCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kvmemo_key_count",
			Help: "Current total number of live keys across all shards.",
		}),
	}
	reg.MustRegister(p.hits, p.misses, p.sets, p.deletes, p.evicted, p.expired, p.memoryUsed, p.keyCount)
	return p
}

func (p *Prometheus) IncHit()    { p.hits.Inc() }
func (p *Prometheus) IncMiss()   { p.misses.Inc() }
func (p *Prometheus) IncSet()    { p.sets.Inc() }
func (p *Prometheus) IncDelete() { p.deletes.Inc() }

func (p *Prometheus) AddEvicted(n int) {
	if n > 0 {
		p.evicted.Add(float64(n))
	}
}

func (p *Prometheus) AddExpired(n int) {
	if n > 0 {
		p.expired.Add(float64(n))
	}
}

func (p *Prometheus) SetMemoryUsed(bytes int64) { p.memoryUsed.Set(float64(bytes)) }
func (p *Prometheus) SetKeyCount(n int)         { p.keyCount.Set(float64(n)) }
