// Package config loads and validates KVMemo's configuration surface
// (spec section 6) from environment variables, optionally staged
// through a .env file via github.com/joho/godotenv (cmd/server calls
// godotenv.Load before this package reads os.Getenv). Grounded on the
// teacher's cmd/server/main.go loadConfig/validateConfig/getenv* helpers,
// generalized from a single ad hoc Config struct into one that mirrors
// KVMemo's own option set.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is the full validated configuration surface: the core options
// spec section 6 names, plus the ambient collaborator options (listen
// addresses, logging) spec section 1 scopes out of the core but that a
// complete binary still needs.
type Config struct {
	ShardCount         int
	ShardCapacity      int
	MaxMemoryBytes     int64
	MaxValueBytes      int64
	ListenAddr         string
	MaxConnections     int
	EnableTTL          bool
	TTLSweepIntervalMs int
	EvictionPolicy     string

	HTTPAddr  string
	LogLevel  string
	LogFormat string
}

// Load reads every recognized KVMEMO_* environment variable, applying
// the documented defaults, and validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		ShardCount:         getenvInt("KVMEMO_SHARD_COUNT", 16),
		ShardCapacity:      getenvInt("KVMEMO_SHARD_CAPACITY", 0),
		MaxMemoryBytes:     getenvInt64("KVMEMO_MAX_MEMORY_BYTES", 0),
		MaxValueBytes:      getenvInt64("KVMEMO_MAX_VALUE_BYTES", 1<<20),
		ListenAddr:         getenv("KVMEMO_LISTEN_ADDR", ":6390"),
		MaxConnections:     getenvInt("KVMEMO_MAX_CONNECTIONS", 10000),
		EnableTTL:          getenvBool("KVMEMO_ENABLE_TTL", true),
		TTLSweepIntervalMs: getenvInt("KVMEMO_TTL_SWEEP_INTERVAL_MS", 100),
		EvictionPolicy:     getenv("KVMEMO_EVICTION_POLICY", "recency"),

		HTTPAddr:  getenv("KVMEMO_HTTP_ADDR", ":6391"),
		LogLevel:  getenv("KVMEMO_LOG_LEVEL", "info"),
		LogFormat: getenv("KVMEMO_LOG_FORMAT", "text"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.ShardCount <= 0 {
		return fmt.Errorf("config: KVMEMO_SHARD_COUNT must be positive, got %d", c.ShardCount)
	}
	if c.ShardCount&(c.ShardCount-1) != 0 {
		return fmt.Errorf("config: KVMEMO_SHARD_COUNT must be a power of two, got %d", c.ShardCount)
	}
	if c.ShardCapacity < 0 {
		return fmt.Errorf("config: KVMEMO_SHARD_CAPACITY cannot be negative")
	}
	if c.MaxMemoryBytes < 0 {
		return fmt.Errorf("config: KVMEMO_MAX_MEMORY_BYTES cannot be negative")
	}
	if c.MaxValueBytes <= 0 {
		return fmt.Errorf("config: KVMEMO_MAX_VALUE_BYTES must be positive, got %d", c.MaxValueBytes)
	}
	if c.MaxConnections <= 0 {
		return fmt.Errorf("config: KVMEMO_MAX_CONNECTIONS must be positive, got %d", c.MaxConnections)
	}
	if c.EnableTTL && c.TTLSweepIntervalMs <= 0 {
		return fmt.Errorf("config: KVMEMO_TTL_SWEEP_INTERVAL_MS must be positive when TTL is enabled, got %d", c.TTLSweepIntervalMs)
	}
	if c.EvictionPolicy != "recency" {
		return fmt.Errorf("config: unsupported KVMEMO_EVICTION_POLICY %q (only \"recency\" is implemented)", c.EvictionPolicy)
	}
	return nil
}

// SweepInterval returns TTLSweepIntervalMs as a time.Duration for the
// Sweeper constructor.
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.TTLSweepIntervalMs) * time.Millisecond
}

func getenv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getenvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func getenvInt64(key string, defaultValue int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return defaultValue
}

func getenvBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}
