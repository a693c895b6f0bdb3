package app

import (
	"sync"

	"postboard/internal/store"
)

// Registry maps session ids to their stores. Stores are created on first use.
type Registry struct {
	mu     sync.Mutex
	stores map[string]*Store
	mw     []store.Middleware
	onSize func(int)
}

func NewRegistry(onSize func(int), mw ...store.Middleware) *Registry {
	if onSize == nil {
		onSize = func(int) {}
	}
	return &Registry{stores: make(map[string]*Store), mw: mw, onSize: onSize}
}

// Get returns the session's store, creating it if needed.
func (r *Registry) Get(sessionID string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.stores[sessionID]
	if !ok {
		st = NewStore(r.mw...)
		r.stores[sessionID] = st
		r.onSize(len(r.stores))
	}
	return st
}

// Drop forgets the stores of the given sessions.
func (r *Registry) Drop(sessionIDs ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range sessionIDs {
		delete(r.stores, id)
	}
	r.onSize(len(r.stores))
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}
