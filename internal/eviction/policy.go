// Package eviction implements the pluggable eviction policy capability
// (spec section 4.4) and the Eviction Manager that coordinates a policy
// against the memory tracker to produce advisory victim lists (spec
// section 4.5). It is grounded on the teacher's internal/engine/eviction
// package, generalized from a single hard-coded recency scheme into an
// explicit capability interface so frequency/insertion/random variants
// can be added later without touching the Manager.
package eviction

// Policy is the capability set a key's access pattern is fed through.
// on_read and on_write are both "touch" for the mandatory recency
// variant; a future frequency-ordered variant would treat them
// differently.
type Policy interface {
	OnRead(key string)
	OnWrite(key string)
	OnDelete(key string)
	// SelectVictim returns a candidate for removal and whether the
	// policy had one to offer. An empty policy returns ("", false).
	SelectVictim() (string, bool)
	// Len reports how many keys the policy is currently tracking, for
	// the Manager's "policy is non-empty" pressure-loop check.
	Len() int
}
