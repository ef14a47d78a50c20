package engine

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Registry is the caller-owned account store mutated by the engine's
// three writers: the assembler (Put), the vesting subscriber
// (SetVestedBalance), and the caller itself (Remove). Updates are
// field-level and keyed by identifier; implementations must never
// replace a whole record on behalf of a single-field update.
type Registry interface {
	// Account returns the snapshot registered under id.
	Account(id string) (*AccountSnapshot, bool)

	// Put registers a snapshot together with the stop function for its
	// background tasks. Replacing an entry stops the previous one's tasks.
	Put(snap *AccountSnapshot, stop func())

	// Remove drops an account and stops its background tasks.
	Remove(id string)

	// SetVestedBalance updates one account's vested balance in place.
	// Reports false when the account is no longer registered, in which
	// case the update is dropped.
	SetVestedBalance(id string, amount decimal.Decimal) bool
}

type registryEntry struct {
	snap *AccountSnapshot
	stop func()
}

// MemoryRegistry is an in-memory Registry guarded by a RWMutex.
type MemoryRegistry struct {
	mu       sync.RWMutex
	accounts map[string]*registryEntry
}

// NewMemoryRegistry creates an empty in-memory registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		accounts: make(map[string]*registryEntry),
	}
}

// Account returns the snapshot registered under id.
func (r *MemoryRegistry) Account(id string) (*AccountSnapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.accounts[id]
	if !ok {
		return nil, false
	}
	return entry.snap, true
}

// Accounts returns all registered snapshots, in unspecified order.
func (r *MemoryRegistry) Accounts() []*AccountSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*AccountSnapshot, 0, len(r.accounts))
	for _, entry := range r.accounts {
		out = append(out, entry.snap)
	}
	return out
}

// Put registers a snapshot and the stop function for its background
// tasks. An existing entry for the same identifier is replaced and its
// tasks stopped.
func (r *MemoryRegistry) Put(snap *AccountSnapshot, stop func()) {
	r.mu.Lock()
	prev := r.accounts[snap.ID]
	if stop == nil {
		stop = func() {}
	}
	r.accounts[snap.ID] = &registryEntry{snap: snap, stop: stop}
	r.mu.Unlock()

	if prev != nil {
		prev.stop()
	}
}

// Remove drops an account and cancels its background tasks.
func (r *MemoryRegistry) Remove(id string) {
	r.mu.Lock()
	entry := r.accounts[id]
	delete(r.accounts, id)
	r.mu.Unlock()

	if entry != nil {
		entry.stop()
	}
}

// SetVestedBalance updates one account's vested balance in place.
func (r *MemoryRegistry) SetVestedBalance(id string, amount decimal.Decimal) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.accounts[id]
	if !ok {
		return false
	}
	entry.snap.VestedBalance = amount
	return true
}
