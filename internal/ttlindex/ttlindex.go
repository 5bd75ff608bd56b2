// Package ttlindex implements the time-bucketed TTL index: a sorted
// map from expire_at to the keys due at that deadline, plus a reverse
// map from key to its current deadline. The same type backs both the
// Engine's global index and each shard's local index described in
// spec section 4.2 and 4.6 — the only difference is which mutex, if
// any, the caller holds around it.
//
// Index is not internally synchronized; callers serialize access
// (the Engine holds a dedicated TTL mutex around the global index,
// a Shard's own mutex covers its local index).
package ttlindex

import "sort"

// Index maps expire_at (epoch milliseconds) to the ordered set of keys
// due at that deadline, with a reverse key -> expire_at lookup kept
// consistent on every mutation.
type Index struct {
	buckets map[int64][]string
	order   []int64 // ascending, unique bucket timestamps
	reverse map[string]int64
}

// New returns an empty Index.
func New() *Index {
	return &Index{
		buckets: make(map[int64][]string),
		reverse: make(map[string]int64),
	}
}

// Upsert binds key to deadline t, replacing any prior binding for key.
func (ix *Index) Upsert(key string, t int64) {
	ix.Remove(key)
	if _, exists := ix.buckets[t]; !exists {
		ix.insertOrder(t)
	}
	ix.buckets[t] = append(ix.buckets[t], key)
	ix.reverse[key] = t
}

// Remove erases key's deadline binding, dropping the bucket if it
// becomes empty. A no-op if key has no binding.
func (ix *Index) Remove(key string) {
	t, ok := ix.reverse[key]
	if !ok {
		return
	}
	delete(ix.reverse, key)

	bucket := ix.buckets[t]
	for i, k := range bucket {
		if k == key {
			bucket = append(bucket[:i], bucket[i+1:]...)
			break
		}
	}
	if len(bucket) == 0 {
		delete(ix.buckets, t)
		ix.removeOrder(t)
	} else {
		ix.buckets[t] = bucket
	}
}

// CollectExpired removes and returns, in ascending-deadline order,
// every key whose deadline is <= now.
func (ix *Index) CollectExpired(now int64) []string {
	var expired []string
	cut := 0
	for ; cut < len(ix.order); cut++ {
		t := ix.order[cut]
		if t > now {
			break
		}
		for _, key := range ix.buckets[t] {
			expired = append(expired, key)
			delete(ix.reverse, key)
		}
		delete(ix.buckets, t)
	}
	if cut > 0 {
		ix.order = ix.order[cut:]
	}
	return expired
}

// Len reports the number of keys currently tracked.
func (ix *Index) Len() int {
	return len(ix.reverse)
}

// ExpireAt returns the deadline bound to key, if any.
func (ix *Index) ExpireAt(key string) (int64, bool) {
	t, ok := ix.reverse[key]
	return t, ok
}

func (ix *Index) insertOrder(t int64) {
	i := sort.Search(len(ix.order), func(i int) bool { return ix.order[i] >= t })
	ix.order = append(ix.order, 0)
	copy(ix.order[i+1:], ix.order[i:])
	ix.order[i] = t
}

func (ix *Index) removeOrder(t int64) {
	i := sort.Search(len(ix.order), func(i int) bool { return ix.order[i] >= t })
	if i < len(ix.order) && ix.order[i] == t {
		ix.order = append(ix.order[:i], ix.order[i+1:]...)
	}
}
