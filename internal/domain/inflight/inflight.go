// Package inflight tracks recomputations in progress so the same
// (person, skill) pair is never estimated twice concurrently.
package inflight

import "sync"

// Key is the canonical identity of one recompute unit.
func Key(personID, skill string) string {
	return personID + "|" + skill
}

// Gate is a concurrency guard over recompute keys. Acquire wins at most
// once per key until the matching Release.
type Gate struct {
	mu     sync.Mutex
	active map[string]struct{}
}

// NewGate creates an empty gate.
func NewGate() *Gate {
	return &Gate{active: make(map[string]struct{})}
}

// Acquire claims the key. It returns false when the key is already held,
// in which case the caller must skip the work and must not Release.
func (g *Gate) Acquire(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, held := g.active[key]; held {
		return false
	}
	g.active[key] = struct{}{}
	return true
}

// Release frees the key. Releasing an unheld key is a no-op.
func (g *Gate) Release(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.active, key)
}

// Size reports how many keys are currently held.
func (g *Gate) Size() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.active)
}
