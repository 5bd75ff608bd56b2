// Package engine implements the orchestrator that composes the shard
// manager, global TTL index, and eviction manager into the public
// Set/Get/Delete API (spec section 4.8). It is grounded on the
// teacher's internal/adapter/tcp dispatch pattern (store.Put/Get/Delete
// called from the protocol layer) generalized to KVMemo's own
// three-subsystem ordering policy, which the teacher's core.Store did
// not have to enforce.
package engine

import (
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/kvmemo/kvmemo/internal/clock"
	"github.com/kvmemo/kvmemo/internal/entry"
	"github.com/kvmemo/kvmemo/internal/errs"
	"github.com/kvmemo/kvmemo/internal/eviction"
	"github.com/kvmemo/kvmemo/internal/logging"
	"github.com/kvmemo/kvmemo/internal/metrics"
	"github.com/kvmemo/kvmemo/internal/store"
	"github.com/kvmemo/kvmemo/internal/ttlindex"
)

// Config holds the subset of the configuration surface (spec section
// 6) the Engine itself enforces; shard/listener/connection concerns
// live in internal/config and internal/server.
type Config struct {
	MaxValueBytes int64
	EnableTTL     bool
}

// Engine is the public storage API exposed to the network layer. Its
// only mutable data of its own is the global TTL index (with its mutex)
// and a singleflight group — every entry lives in the shards, and byte
// accounting lives in the eviction manager and the memory tracker.
type Engine struct {
	shards   *store.Manager
	eviction *eviction.Manager
	clock    clock.Clock
	cfg      Config
	log      logging.Logger
	metrics  metrics.Interface

	ttlMu sync.Mutex
	ttl   *ttlindex.Index

	evictGroup singleflight.Group
}

// New wires an Engine from already-constructed collaborators. Callers
// (cmd/server) are responsible for building the shard manager sized to
// shard_count/shard_capacity and an eviction.Manager backed by a
// memory.Tracker sized to max_memory_bytes. m reports eviction/expiry
// counts and memory/key gauges; pass metrics.Noop{} where reporting is
// not wanted (most tests).
func New(cfg Config, shards *store.Manager, evictionMgr *eviction.Manager, c clock.Clock, log logging.Logger, m metrics.Interface) *Engine {
	return &Engine{
		shards:   shards,
		eviction: evictionMgr,
		clock:    c,
		cfg:      cfg,
		log:      log,
		metrics:  m,
		ttl:      ttlindex.New(),
	}
}

// Set validates and stores key/value, optionally with a TTL in
// milliseconds. ttlMs == 0 means no TTL; negative TTL is always
// rejected, and positive TTL is rejected when TTL support is disabled.
func (e *Engine) Set(key string, value []byte, ttlMs int64) error {
	if int64(len(value)) > e.cfg.MaxValueBytes {
		return errs.InvalidArgument("value of %d bytes exceeds max_value_bytes=%d", len(value), e.cfg.MaxValueBytes)
	}
	if ttlMs < 0 {
		return errs.InvalidArgument("ttl_ms must be positive, got %d", ttlMs)
	}
	if ttlMs > 0 && !e.cfg.EnableTTL {
		return errs.InvalidArgument("TTL support is disabled")
	}

	shard := e.shards.Route(key)

	var result store.SetResult
	if ttlMs > 0 {
		result = shard.SetWithTTL(key, value, ttlMs)
		e.ttlMu.Lock()
		e.ttl.Upsert(key, e.clock.WallMillis()+ttlMs)
		e.ttlMu.Unlock()
	} else {
		result = shard.Set(key, value)
		e.ttlMu.Lock()
		e.ttl.Remove(key)
		e.ttlMu.Unlock()
	}

	if result.Evicted {
		e.ttlMu.Lock()
		e.ttl.Remove(result.EvictedKey)
		e.ttlMu.Unlock()
		e.eviction.OnDelete(result.EvictedKey)
	}

	e.eviction.OnWrite(key, result.EstimatedSize)

	if e.eviction.OverLimit() {
		e.ProcessEvictions()
	}
	return nil
}

// Get routes to key's shard and returns its value, or a miss — an
// expired key is indistinguishable from an absent one.
func (e *Engine) Get(key string) ([]byte, bool) {
	shard := e.shards.Route(key)
	value, ok := shard.Get(key)
	if !ok {
		return nil, false
	}
	e.eviction.OnRead(key)
	return value, true
}

// Delete unconditionally removes key. Whether it was present is not
// observable to the wire caller (spec section 6), but is returned here
// for in-process callers and tests. The sweeper and eviction paths do
// not go through Delete; they delete from the shard directly.
func (e *Engine) Delete(key string) bool {
	shard := e.shards.Route(key)
	present, _ := shard.Delete(key)

	e.ttlMu.Lock()
	e.ttl.Remove(key)
	e.ttlMu.Unlock()

	e.eviction.OnDelete(key)
	return present
}

// ProcessExpired is invoked by the TTL sweeper: it drains every key
// whose deadline has passed from the global TTL index and deletes each
// from its owning shard. A sweep that finds a key already gone from
// its shard (raced with an explicit delete) is silently tolerated.
func (e *Engine) ProcessExpired() int {
	now := e.clock.WallMillis()

	e.ttlMu.Lock()
	expired := e.ttl.CollectExpired(now)
	e.ttlMu.Unlock()

	for _, key := range expired {
		shard := e.shards.Route(key)
		shard.Delete(key)
		e.eviction.OnDelete(key)
	}
	if len(expired) > 0 {
		e.log.Debug("ttl sweep reclaimed keys", "count", len(expired))
		e.metrics.AddExpired(len(expired))
	}
	return len(expired)
}

// ProcessEvictions asks the eviction manager for its current victim
// list and performs the actual destructive deletes — the eviction
// manager itself never touches shard state (spec section 4.5).
// Concurrent callers (several Set calls noticing pressure at once) are
// coalesced so only one eviction pass actually runs at a time; the
// others observe its result instead of racing a redundant pass.
func (e *Engine) ProcessEvictions() int {
	v, _, _ := e.evictGroup.Do("evict", func() (any, error) {
		victims := e.eviction.CollectEvictionCandidates()
		for _, key := range victims {
			shard := e.shards.Route(key)
			shard.Delete(key)
			e.ttlMu.Lock()
			e.ttl.Remove(key)
			e.ttlMu.Unlock()
		}
		if len(victims) > 0 {
			e.log.Debug("eviction pass reclaimed keys", "count", len(victims))
			e.metrics.AddEvicted(len(victims))
		}
		if e.eviction.OverLimit() {
			e.log.Warn("sustained memory pressure after eviction pass")
		}
		return len(victims), nil
	})
	return v.(int)
}

// Stats is a snapshot of engine-wide counters for the admin HTTP
// surface (spec section 12 supplement).
type Stats struct {
	ShardCount int
	TotalKeys  int
	MemoryUsed int64
}

// Stats also refreshes the memory/key-count gauges on e.metrics, so
// any periodic caller (the TCP server's OnTick, the admin HTTP
// /v1/stats handler) doubles as the mechanism that keeps those gauges
// from going stale between writes.
func (e *Engine) Stats() Stats {
	total := 0
	for _, shard := range e.shards.Shards() {
		total += shard.Size()
	}
	used := e.eviction.Used()

	e.metrics.SetMemoryUsed(used)
	e.metrics.SetKeyCount(total)

	return Stats{
		ShardCount: e.shards.ShardCount(),
		TotalKeys:  total,
		MemoryUsed: used,
	}
}

// EstimateSize re-exposes entry.EstimateSize for callers (stats,
// tests) that need the same byte-accounting formula the Engine uses
// internally, without importing internal/entry directly.
func EstimateSize(key string, value []byte) int64 {
	return entry.EstimateSize(key, value)
}
