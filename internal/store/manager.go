package store

import (
	"fmt"
	"hash"
	"hash/fnv"
	"sync"

	"github.com/kvmemo/kvmemo/internal/clock"
)

// hasherPool reuses fnv32a state across Route calls instead of
// allocating one per lookup — the same pooling pattern the teacher and
// amakane-hakari-kavos both use around hash/fnv.
var hasherPool = sync.Pool{
	New: func() any { return fnv.New32a() },
}

// Manager hash-routes keyed operations across a fixed, power-of-two
// number of shards (spec section 4.7).
type Manager struct {
	shards []*Shard
	mask   uint32
}

// NewManager validates shardCount (must be > 0 and a power of two) and
// constructs that many shards, each capped at shardCapacity.
func NewManager(shardCount, shardCapacity int, c clock.Clock) (*Manager, error) {
	if shardCount <= 0 {
		return nil, fmt.Errorf("store: shard_count must be positive, got %d", shardCount)
	}
	if shardCount&(shardCount-1) != 0 {
		return nil, fmt.Errorf("store: shard_count must be a power of two, got %d", shardCount)
	}
	shards := make([]*Shard, shardCount)
	for i := range shards {
		shards[i] = NewShard(shardCapacity, c)
	}
	return &Manager{shards: shards, mask: uint32(shardCount - 1)}, nil
}

// Route returns the shard owning key: hash(key) & (shard_count - 1).
func (m *Manager) Route(key string) *Shard {
	return m.shards[m.indexFor(key)]
}

func (m *Manager) indexFor(key string) uint32 {
	h := hasherPool.Get().(hash.Hash32)
	defer hasherPool.Put(h)
	h.Reset()
	_, _ = h.Write([]byte(key))
	return h.Sum32() & m.mask
}

// ShardCount returns the number of shards this manager was constructed
// with.
func (m *Manager) ShardCount() int {
	return len(m.shards)
}

// CleanupExpired iterates shards in index order, collecting every
// locally-expired key per shard. It returns a flat list of (shard
// index, key) pairs so a caller can remove each from the global TTL
// index and notify eviction without re-routing. The Engine does not
// call it; its sweep runs from the global TTL index instead.
type ExpiredKey struct {
	ShardIndex int
	Key        string
}

func (m *Manager) CleanupExpired(now int64) []ExpiredKey {
	var out []ExpiredKey
	for i, shard := range m.shards {
		for _, key := range shard.CleanupExpired(now) {
			out = append(out, ExpiredKey{ShardIndex: i, Key: key})
		}
	}
	return out
}

// Shards exposes the underlying slice for components (stats reporting,
// invariant checks in tests) that need to iterate every shard, e.g. to
// sum Size(). Callers must not mutate the slice.
func (m *Manager) Shards() []*Shard {
	return m.shards
}
