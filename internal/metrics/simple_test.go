package metrics

import "testing"

func TestSimpleCounters(t *testing.T) {
	m := NewSimple()
	m.IncHit()
	m.IncHit()
	m.IncMiss()
	m.AddEvicted(3)
	m.AddExpired(2)
	m.SetMemoryUsed(1024)
	m.SetKeyCount(7)

	snap := m.Snapshot()
	if snap.Hits != 2 || snap.Misses != 1 || snap.Evicted != 3 || snap.Expired != 2 {
		t.Fatalf("Snapshot() = %+v", snap)
	}
	if snap.MemoryUsed != 1024 || snap.KeyCount != 7 {
		t.Fatalf("Snapshot() = %+v", snap)
	}
}

func TestSimpleAddEvictedIgnoresNonPositive(t *testing.T) {
	m := NewSimple()
	m.AddEvicted(0)
	m.AddEvicted(-5)
	if snap := m.Snapshot(); snap.Evicted != 0 {
		t.Fatalf("Evicted = %d, want 0", snap.Evicted)
	}
}

func TestNoopDoesNotPanic(t *testing.T) {
	var n Noop
	n.IncHit()
	n.IncMiss()
	n.IncSet()
	n.IncDelete()
	n.AddEvicted(5)
	n.AddExpired(5)
	n.SetMemoryUsed(100)
	n.SetKeyCount(10)
}
