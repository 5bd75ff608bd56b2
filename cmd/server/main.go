// Command server wires KVMemo's configuration, logging, metrics,
// storage engine, background workers, and TCP/HTTP listeners together
// and runs until terminated. Adapted from the teacher's
// cmd/server/main.go (godotenv loading, applyRuntimeTuning, banner,
// startServers/gracefulShutdown shape), rewired from the tenant
// manager and persistence layer onto a single Engine and its
// background sweeper/eviction trigger.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kvmemo/kvmemo/internal/clock"
	"github.com/kvmemo/kvmemo/internal/config"
	"github.com/kvmemo/kvmemo/internal/engine"
	"github.com/kvmemo/kvmemo/internal/eviction"
	"github.com/kvmemo/kvmemo/internal/httpapi"
	"github.com/kvmemo/kvmemo/internal/logging"
	"github.com/kvmemo/kvmemo/internal/memory"
	"github.com/kvmemo/kvmemo/internal/metrics"
	"github.com/kvmemo/kvmemo/internal/server"
	"github.com/kvmemo/kvmemo/internal/store"
)

const version = "0.1.0"

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	printBanner(cfg)

	c := clock.New()

	shards, err := store.NewManager(cfg.ShardCount, cfg.ShardCapacity, c)
	if err != nil {
		log.Fatalf("failed to construct shard manager: %v", err)
	}

	tracker := memory.New(cfg.MaxMemoryBytes)
	evictionMgr := eviction.NewManager(eviction.NewRecencyPolicy(), tracker)

	promMetrics := metrics.NewPrometheus(prometheus.DefaultRegisterer)
	simpleMetrics := metrics.NewSimple()
	combined := combinedMetrics{promMetrics, simpleMetrics}

	eng := engine.New(engine.Config{
		MaxValueBytes: cfg.MaxValueBytes,
		EnableTTL:     cfg.EnableTTL,
	}, shards, evictionMgr, c, logger, combined)

	var sweeper *engine.Sweeper
	var trigger *engine.EvictionTrigger
	if cfg.EnableTTL {
		sweeper = engine.NewSweeper(eng, cfg.SweepInterval())
		go sweeper.Run()
	}
	if cfg.MaxMemoryBytes > 0 {
		trigger = engine.NewEvictionTrigger(eng, cfg.SweepInterval())
		go trigger.Run()
	}

	tcpServer := server.New(eng, logger, combined)
	httpServer := httpapi.New(cfg.HTTPAddr, eng, simpleMetrics)

	go func() {
		logger.Info("starting tcp listener", "addr", cfg.ListenAddr)
		if err := tcpServer.ListenAndServe(cfg.ListenAddr); err != nil {
			logger.Error("tcp listener stopped", "err", err)
		}
	}()
	go func() {
		logger.Info("starting admin http listener", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil {
			logger.Error("admin http listener stopped", "err", err)
		}
	}()

	waitForShutdown(logger, tcpServer, httpServer, sweeper, trigger)
}

// combinedMetrics fans every report out to both the Prometheus
// registry (for /metrics scraping) and the in-process Simple counters
// (for the human-readable /v1/stats JSON body).
type combinedMetrics struct {
	prom   metrics.Interface
	simple metrics.Interface
}

func (m combinedMetrics) IncHit()    { m.prom.IncHit(); m.simple.IncHit() }
func (m combinedMetrics) IncMiss()   { m.prom.IncMiss(); m.simple.IncMiss() }
func (m combinedMetrics) IncSet()    { m.prom.IncSet(); m.simple.IncSet() }
func (m combinedMetrics) IncDelete() { m.prom.IncDelete(); m.simple.IncDelete() }
func (m combinedMetrics) AddEvicted(n int) {
	m.prom.AddEvicted(n)
	m.simple.AddEvicted(n)
}
func (m combinedMetrics) AddExpired(n int) {
	m.prom.AddExpired(n)
	m.simple.AddExpired(n)
}
func (m combinedMetrics) SetMemoryUsed(b int64) {
	m.prom.SetMemoryUsed(b)
	m.simple.SetMemoryUsed(b)
}
func (m combinedMetrics) SetKeyCount(n int) {
	m.prom.SetKeyCount(n)
	m.simple.SetKeyCount(n)
}

func printBanner(cfg *config.Config) {
	fmt.Printf(`
KVMemo %s
========================================
Go:          %s
CPU:         %d cores
Platform:    %s/%s

Shards:      %d (capacity %d/shard)
Max memory:  %d bytes
Max value:   %d bytes
TTL:         %v (sweep every %dms)
Eviction:    %s

TCP listen:  %s
Admin HTTP:  %s
========================================
`,
		version, runtime.Version(), runtime.NumCPU(), runtime.GOOS, runtime.GOARCH,
		cfg.ShardCount, cfg.ShardCapacity, cfg.MaxMemoryBytes, cfg.MaxValueBytes,
		cfg.EnableTTL, cfg.TTLSweepIntervalMs, cfg.EvictionPolicy,
		cfg.ListenAddr, cfg.HTTPAddr)
}

func waitForShutdown(logger logging.Logger, tcpServer *server.TCPServer, httpServer *httpapi.Server, sweeper *engine.Sweeper, trigger *engine.EvictionTrigger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutdown signal received", "signal", sig.String())

	if sweeper != nil {
		sweeper.Stop()
	}
	if trigger != nil {
		trigger.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := tcpServer.Shutdown(10 * time.Second); err != nil {
		logger.Error("tcp shutdown error", "err", err)
	}
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", "err", err)
	}

	logger.Info("shutdown complete")
}
