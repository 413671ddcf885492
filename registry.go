package minirun

import "sync/atomic"

// registry holds the per-group runtime state: the two-level map from
// (group, key) to sentinel, the per-group submission locks, and the
// per-group running-task counters. Entries are created lazily and live
// for the runtime's lifetime; key cardinality is bounded by program
// intent, so nothing is ever deleted.
//
// Each map has one lock guarding insertion. Once a slot exists its inner
// object carries its own synchronization (sentinel lock, atomic counter).
type registry struct {
	sentinelMu spinLock
	sentinels  map[Group]map[Dep]*sentinel

	lockMu     spinLock
	groupLocks map[Group]*spinLock

	countMu spinLock
	counts  map[Group]*atomic.Int64
}

func newRegistry() *registry {
	return &registry{
		sentinels:  make(map[Group]map[Dep]*sentinel),
		groupLocks: make(map[Group]*spinLock),
		counts:     make(map[Group]*atomic.Int64),
	}
}

func (g *registry) sentinel(group Group, key Dep) *sentinel {
	g.sentinelMu.lock()
	m := g.sentinels[group]
	if m == nil {
		m = make(map[Dep]*sentinel)
		g.sentinels[group] = m
	}
	s := m[key]
	if s == nil {
		s = new(sentinel)
		m[key] = s
	}
	g.sentinelMu.unlock()
	return s
}

// groupLock returns the submission lock for a group. Holding it across
// all dependency insertions of one submission keeps a finishing
// predecessor in the same group from advancing sentinels mid-wiring.
func (g *registry) groupLock(group Group) *spinLock {
	g.lockMu.lock()
	l := g.groupLocks[group]
	if l == nil {
		l = new(spinLock)
		g.groupLocks[group] = l
	}
	g.lockMu.unlock()
	return l
}

func (g *registry) counter(group Group) *atomic.Int64 {
	g.countMu.lock()
	c := g.counts[group]
	if c == nil {
		c = new(atomic.Int64)
		g.counts[group] = c
	}
	g.countMu.unlock()
	return c
}
