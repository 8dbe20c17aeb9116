package engine

import (
	"sync"

	"github.com/hearthkit/automation/program"
)

// registry is the copy-on-write program registry (§5): every structural
// mutation allocates a fresh backing slice and swaps a pointer under mu;
// routers and schedulers take one Snapshot and range over the immutable
// slice it returns, so a concurrent Add/Remove can never corrupt their
// traversal.
//
// Grounded on design note 9's "snapshot iterator... stable view of the
// registry"; the locking is a plain sync.RWMutex and records no reason for
// which it is held.
type registry struct {
	mu    sync.RWMutex
	slice []*program.Record
}

func newRegistry() *registry {
	return &registry{}
}

// Snapshot returns the current backing slice. Callers must not mutate it.
func (r *registry) Snapshot() []*program.Record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.slice
}

// Add appends p to the registry.
func (r *registry) Add(p *program.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := make([]*program.Record, len(r.slice)+1)
	copy(next, r.slice)
	next[len(r.slice)] = p
	r.slice = next
}

// Remove deletes the record with the given Address, if present, and
// reports whether it was found.
func (r *registry) Remove(address int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := -1
	for i, p := range r.slice {
		if p.Address == address {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	next := make([]*program.Record, 0, len(r.slice)-1)
	next = append(next, r.slice[:idx]...)
	next = append(next, r.slice[idx+1:]...)
	r.slice = next
	return true
}

// Get returns the record with the given Address, if present.
func (r *registry) Get(address int) (*program.Record, bool) {
	for _, p := range r.Snapshot() {
		if p.Address == address {
			return p, true
		}
	}
	return nil, false
}

// MaxAddress returns the highest Address currently registered, or 0 if the
// registry is empty.
func (r *registry) MaxAddress() int {
	max := 0
	for _, p := range r.Snapshot() {
		if p.Address > max {
			max = p.Address
		}
	}
	return max
}
