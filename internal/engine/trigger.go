package engine

import (
	"sync/atomic"
	"time"

	"github.com/kvmemo/kvmemo/internal/errs"
)

// EvictionTrigger is the background half of the eviction trigger (spec
// section 2, "Eviction Trigger"): Engine.Set already drives
// ProcessEvictions inline the moment a write notices pressure, but a
// policy that empties out before pressure clears returns a partial
// reclaim (spec section 4.5) — this loop retries on an interval so
// pressure is not left unaddressed between writes.
type EvictionTrigger struct {
	engine   *Engine
	interval time.Duration
	stopped  atomic.Bool
	done     chan struct{}
}

// NewEvictionTrigger returns a trigger that calls
// engine.ProcessEvictions every interval, but only while the engine
// reports sustained pressure.
func NewEvictionTrigger(engine *Engine, interval time.Duration) *EvictionTrigger {
	return &EvictionTrigger{
		engine:   engine,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Run blocks, ticking until Stop is called.
func (t *EvictionTrigger) Run() {
	defer errs.Guard(t.engine.log)()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	defer close(t.done)

	for {
		if t.stopped.Load() {
			return
		}
		<-ticker.C
		if t.stopped.Load() {
			return
		}
		if t.engine.eviction.OverLimit() {
			t.engine.ProcessEvictions()
		}
	}
}

// Stop signals the loop to exit at its next tick boundary and blocks
// until it has done so.
func (t *EvictionTrigger) Stop() {
	t.stopped.Store(true)
	<-t.done
}
