// Package keymutex provides process-local mutual exclusion keyed by logical
// collection name.
package keymutex

import (
	"sort"
	"sync"
)

// Mutex serializes critical sections per key. Different keys never block
// each other. It is injectable state, constructed once per store instance,
// so tests get clean isolation from fresh instances.
type Mutex struct {
	mu    sync.Mutex
	locks map[string]*entry

	// rank is the fixed global ordering used when one operation must hold
	// several keys at once; acquiring in rank order prevents deadlock.
	rank map[string]int
}

type entry struct {
	mu   sync.Mutex
	refs int
}

// New creates a Mutex. The order arguments define the global lock order for
// LockMany; keys outside the order sort after it, alphabetically.
func New(order ...string) *Mutex {
	rank := make(map[string]int, len(order))
	for i, key := range order {
		rank[key] = i
	}
	return &Mutex{
		locks: make(map[string]*entry),
		rank:  rank,
	}
}

// Lock acquires the key and returns its release function. The caller must
// invoke the release exactly once, normally via defer so the key is freed
// whether the critical section succeeds or panics.
func (m *Mutex) Lock(key string) (unlock func()) {
	m.mu.Lock()
	e := m.locks[key]
	if e == nil {
		e = &entry{}
		m.locks[key] = e
	}
	e.refs++
	m.mu.Unlock()

	e.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Unlock()
			m.mu.Lock()
			e.refs--
			if e.refs == 0 {
				delete(m.locks, key)
			}
			m.mu.Unlock()
		})
	}
}

// LockMany acquires every key in the fixed global order, regardless of the
// order they are passed in, and returns one release function that frees
// them in reverse. Duplicate keys are acquired once.
func (m *Mutex) LockMany(keys ...string) (unlock func()) {
	ordered := dedup(keys)
	sort.Slice(ordered, func(i, j int) bool {
		ri, iKnown := m.rank[ordered[i]]
		rj, jKnown := m.rank[ordered[j]]
		switch {
		case iKnown && jKnown:
			return ri < rj
		case iKnown:
			return true
		case jKnown:
			return false
		default:
			return ordered[i] < ordered[j]
		}
	})

	unlocks := make([]func(), 0, len(ordered))
	for _, key := range ordered {
		unlocks = append(unlocks, m.Lock(key))
	}
	return func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}
}

func dedup(keys []string) []string {
	seen := make(map[string]bool, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}
