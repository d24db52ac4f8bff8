package runtime

import (
	"sync"

	"github.com/shekharshaurya-coder/finalWork/contract"
)

// Registry maps a user id to its single active live-connection handle.
// One slot per user: a second connection from the same user evicts the first.
// Entries are ephemeral and never persisted; presence is the key set.
//
// Registry is safe for concurrent use by multiple goroutines.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]contract.EventSink
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]contract.EventSink)}
}

// Register binds the user to the given handle, replacing any existing one.
// The evicted handle is returned so the caller can close it.
func (r *Registry) Register(userID string, sink contract.EventSink) (contract.EventSink, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	previous, replaced := r.sessions[userID]
	r.sessions[userID] = sink
	return previous, replaced
}

// Lookup returns the live handle for a user, if any.
func (r *Registry) Lookup(userID string) (contract.EventSink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sink, ok := r.sessions[userID]
	return sink, ok
}

// Unregister removes the mapping only if it still points to the given handle.
// A stale disconnect therefore never evicts a newer connection the same user
// established in the interim. Reports whether a removal happened.
func (r *Registry) Unregister(userID string, sink contract.EventSink) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.sessions[userID]
	if !ok || current != sink {
		return false
	}
	delete(r.sessions, userID)
	return true
}

// Snapshot returns the ids of every currently connected user.
func (r *Registry) Snapshot() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	online := make([]string, 0, len(r.sessions))
	for userID := range r.sessions {
		online = append(online, userID)
	}
	return online
}

// IsOnline is the read-only presence check exposed to external components.
func (r *Registry) IsOnline(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.sessions[userID]
	return ok
}
