// Package store implements the sharded concurrent map: an individually
// locked Shard (spec section 4.6) and a ShardManager that hash-routes
// keyed operations across a fixed, power-of-two number of shards (spec
// section 4.7). Grounded on the teacher's internal/engine/core package
// and on amakane-hakari-kavos's internal/store/shard.go for the
// lock-per-partition and mask-based routing pattern.
package store

import (
	"sync"

	"github.com/kvmemo/kvmemo/internal/clock"
	"github.com/kvmemo/kvmemo/internal/entry"
	"github.com/kvmemo/kvmemo/internal/recency"
	"github.com/kvmemo/kvmemo/internal/ttlindex"
)

// Shard owns one partition of the keyspace: its entry map, a local
// recency tracker bounded by capacity, and a local TTL index. All
// fields are guarded by mu; nothing here is safe for concurrent use
// without it.
type Shard struct {
	mu       sync.Mutex
	entries  map[string]*entry.Entry
	recency  *recency.Tracker
	ttl      *ttlindex.Index
	capacity int
	clock    clock.Clock
}

// NewShard returns an empty Shard. capacity <= 0 means unbounded (no
// local LRU overflow).
func NewShard(capacity int, c clock.Clock) *Shard {
	return &Shard{
		entries:  make(map[string]*entry.Entry),
		recency:  recency.New(capacity),
		ttl:      ttlindex.New(),
		capacity: capacity,
		clock:    c,
	}
}

// SetResult reports the byte-accounting delta a write produced, so the
// Engine can keep the memory tracker and eviction manager symmetric
// with what the shard actually stored. EvictedKey is set when a local
// LRU overflow forced out a victim as a side effect of this write.
type SetResult struct {
	EstimatedSize int64
	EvictedKey    string
	Evicted       bool
}

// Set installs key/value without a TTL, clearing any previous TTL
// binding for key. If the write pushes the shard's recency tracker
// past capacity, the least-recently-used key is evicted locally and
// reported in the result.
func (s *Shard) Set(key string, value []byte) SetResult {
	return s.set(key, value, 0)
}

// SetWithTTL installs key/value with an absolute expire_at computed
// from the shard's clock and ttlMs.
func (s *Shard) SetWithTTL(key string, value []byte, ttlMs int64) SetResult {
	now := s.clock.WallMillis()
	return s.set(key, value, now+ttlMs)
}

func (s *Shard) set(key string, value []byte, expireAt int64) SetResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.WallMillis()
	e := entry.New(value, now, 0)
	if expireAt > 0 {
		e.ExpireAt = expireAt
		s.ttl.Upsert(key, expireAt)
	} else {
		s.ttl.Remove(key)
	}
	s.entries[key] = e

	result := SetResult{EstimatedSize: entry.EstimateSize(key, value)}
	if overflow := s.recency.Touch(key); overflow {
		if victim, err := s.recency.PopLRU(); err == nil && victim != key {
			s.removeLocked(victim)
			result.EvictedKey = victim
			result.Evicted = true
		}
	}
	return result
}

// Get returns a copy of the value for key, or a miss. A present but
// expired entry is removed as a side effect (lazy expiry) and reported
// as a miss, indistinguishable from an absent key.
func (s *Shard) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	now := s.clock.WallMillis()
	if e.IsExpired(now) {
		s.removeLocked(key)
		return nil, false
	}
	s.recency.Touch(key)
	value := make([]byte, len(e.Value))
	copy(value, e.Value)
	return value, true
}

// Delete removes key unconditionally, returning whether it was present
// and, if so, the byte estimate that should be released.
func (s *Shard) Delete(key string) (present bool, estimatedSize int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return false, 0
	}
	size := entry.EstimateSize(key, e.Value)
	s.removeLocked(key)
	return true, size
}

// CleanupExpired removes every locally-expired key as of now and
// returns them, for the shard-local half of lazy/background expiry.
func (s *Shard) CleanupExpired(now int64) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	expired := s.ttl.CollectExpired(now)
	for _, key := range expired {
		delete(s.entries, key)
		s.recency.Remove(key)
	}
	return expired
}

// Size returns the current entry count.
func (s *Shard) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Keys returns every key currently in this shard's entry map, for
// invariant checks in tests. It is O(n) and not meant for hot paths.
func (s *Shard) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.entries))
	for key := range s.entries {
		out = append(out, key)
	}
	return out
}

// RecencyKeys returns the key set this shard's recency tracker
// currently holds, for invariant checks in tests.
func (s *Shard) RecencyKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recency.Keys()
}

// removeLocked deletes key from every shard-local structure. Caller
// must hold mu.
func (s *Shard) removeLocked(key string) {
	delete(s.entries, key)
	s.recency.Remove(key)
	s.ttl.Remove(key)
}
