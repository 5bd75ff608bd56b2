package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ShardCount != 16 {
		t.Fatalf("ShardCount = %d, want default 16", cfg.ShardCount)
	}
	if !cfg.EnableTTL {
		t.Fatal("EnableTTL should default to true")
	}
}

func TestLoadRejectsNonPowerOfTwoShardCount(t *testing.T) {
	t.Setenv("KVMEMO_SHARD_COUNT", "3")
	if _, err := Load(); err == nil {
		t.Fatal("expected an error for a non-power-of-two shard count")
	}
}

func TestLoadRejectsZeroMaxValueBytes(t *testing.T) {
	t.Setenv("KVMEMO_MAX_VALUE_BYTES", "0")
	if _, err := Load(); err == nil {
		t.Fatal("expected an error for KVMEMO_MAX_VALUE_BYTES=0")
	}
}

func TestLoadRejectsTTLEnabledWithoutSweepInterval(t *testing.T) {
	t.Setenv("KVMEMO_TTL_SWEEP_INTERVAL_MS", "0")
	if _, err := Load(); err == nil {
		t.Fatal("expected an error when TTL is enabled with a zero sweep interval")
	}
}

func TestLoadAcceptsTTLDisabledWithZeroSweepInterval(t *testing.T) {
	t.Setenv("KVMEMO_ENABLE_TTL", "false")
	t.Setenv("KVMEMO_TTL_SWEEP_INTERVAL_MS", "0")
	if _, err := Load(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadRejectsUnsupportedEvictionPolicy(t *testing.T) {
	t.Setenv("KVMEMO_EVICTION_POLICY", "frequency")
	if _, err := Load(); err == nil {
		t.Fatal("expected an error for an unimplemented eviction policy")
	}
}
