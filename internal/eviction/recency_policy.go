package eviction

import "github.com/kvmemo/kvmemo/internal/recency"

// RecencyPolicy is the mandatory default Policy: on_read and on_write
// both touch an unbounded recency.Tracker, on_delete removes, and
// select_victim pops the least-recently-used key.
type RecencyPolicy struct {
	tracker *recency.Tracker
}

// NewRecencyPolicy returns a RecencyPolicy backed by an unbounded
// recency tracker — the global eviction policy has no capacity of its
// own, only the memory ceiling decides when to reclaim.
func NewRecencyPolicy() *RecencyPolicy {
	return &RecencyPolicy{tracker: recency.New(0)}
}

func (p *RecencyPolicy) OnRead(key string) { p.tracker.Touch(key) }

func (p *RecencyPolicy) OnWrite(key string) { p.tracker.Touch(key) }

func (p *RecencyPolicy) OnDelete(key string) { p.tracker.Remove(key) }

func (p *RecencyPolicy) SelectVictim() (string, bool) {
	key, err := p.tracker.PopLRU()
	if err != nil {
		return "", false
	}
	return key, true
}

func (p *RecencyPolicy) Len() int { return p.tracker.Len() }
