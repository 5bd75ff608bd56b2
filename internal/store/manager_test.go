package store

import (
	"testing"
	"time"

	"github.com/kvmemo/kvmemo/internal/clock"
)

func TestNewManagerRejectsNonPowerOfTwo(t *testing.T) {
	if _, err := NewManager(3, 0, clock.NewManual(0)); err == nil {
		t.Fatal("shard_count=3 should be rejected as not a power of two")
	}
}

func TestNewManagerRejectsZero(t *testing.T) {
	if _, err := NewManager(0, 0, clock.NewManual(0)); err == nil {
		t.Fatal("shard_count=0 should be rejected")
	}
}

func TestNewManagerAcceptsOne(t *testing.T) {
	m, err := NewManager(1, 0, clock.NewManual(0))
	if err != nil {
		t.Fatal(err)
	}
	if m.ShardCount() != 1 {
		t.Fatalf("ShardCount() = %d, want 1", m.ShardCount())
	}
	// shard_count=1 behaves as a single global lock: every key routes
	// to the same shard.
	if m.Route("a") != m.Route("z") {
		t.Fatal("with shard_count=1 every key must route to the same shard")
	}
}

func TestRouteIsStableForSameKey(t *testing.T) {
	m, err := NewManager(8, 0, clock.NewManual(0))
	if err != nil {
		t.Fatal(err)
	}
	first := m.Route("some-key")
	for i := 0; i < 10; i++ {
		if m.Route("some-key") != first {
			t.Fatal("Route must be deterministic for a fixed key")
		}
	}
}

func TestCleanupExpiredAcrossShards(t *testing.T) {
	c := clock.NewManual(1000)
	m, err := NewManager(4, 0, c)
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c", "d", "e"} {
		m.Route(k).SetWithTTL(k, []byte("v"), 10)
	}
	c.Advance(20 * time.Millisecond)

	expired := m.CleanupExpired(c.WallMillis())
	if len(expired) != 5 {
		t.Fatalf("CleanupExpired() returned %d entries, want 5", len(expired))
	}
}
