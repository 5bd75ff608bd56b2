package engine

import (
	"sync/atomic"
	"time"

	"github.com/kvmemo/kvmemo/internal/errs"
)

// Sweeper is the TTL background worker (spec section 2, "TTL Sweeper"):
// a dedicated goroutine running a sleep-then-process loop that calls
// Engine.ProcessExpired on each tick, terminated by a shared shutdown
// flag checked at every tick boundary rather than by canceling
// in-flight work.
type Sweeper struct {
	engine   *Engine
	interval time.Duration
	stopped  atomic.Bool
	done     chan struct{}
}

// NewSweeper returns a Sweeper that calls engine.ProcessExpired every
// interval once Run is started.
func NewSweeper(engine *Engine, interval time.Duration) *Sweeper {
	return &Sweeper{
		engine:   engine,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Run blocks, ticking until Stop is called. Callers start it in its
// own goroutine.
func (s *Sweeper) Run() {
	defer errs.Guard(s.engine.log)()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	defer close(s.done)

	for {
		if s.stopped.Load() {
			return
		}
		<-ticker.C
		if s.stopped.Load() {
			return
		}
		s.engine.ProcessExpired()
	}
}

// Stop signals the loop to exit at its next tick boundary and blocks
// until it has done so.
func (s *Sweeper) Stop() {
	s.stopped.Store(true)
	<-s.done
}
