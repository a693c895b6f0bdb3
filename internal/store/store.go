// Package store provides a single-source-of-truth state container: a pure
// reducer computes the next state for every dispatched action and
// subscribers are notified after each change.
package store

import (
	"sync"
)

// Action is a tagged description of an intended state change.
type Action interface {
	Type() string
}

// Reducer maps the current state and an action to the next state. It must
// not mutate its input and reports whether the returned state differs.
// Unrecognized actions return the state unchanged and false.
type Reducer[S any] func(state S, action Action) (S, bool)

// DispatchFunc hands an action to the next stage of the dispatch chain.
type DispatchFunc func(Action)

// Middleware wraps dispatch. Middlewares run outermost first.
type Middleware func(next DispatchFunc) DispatchFunc

// Listener is called after every state change.
type Listener func()

type listenerEntry struct {
	id int
	fn Listener
}

type Store[S any] struct {
	// gate serializes whole dispatches, middleware included.
	gate sync.Mutex

	mu        sync.RWMutex
	state     S
	version   uint64
	listeners []listenerEntry
	nextID    int

	reducer  Reducer[S]
	dispatch DispatchFunc
	changed  bool
}

// New creates a store holding initial. Middlewares are applied in order, the
// first one seeing each action first.
func New[S any](reducer Reducer[S], initial S, mw ...Middleware) *Store[S] {
	s := &Store[S]{
		state:   initial,
		reducer: reducer,
	}
	d := DispatchFunc(s.reduce)
	for i := len(mw) - 1; i >= 0; i-- {
		d = mw[i](d)
	}
	s.dispatch = d
	return s
}

// GetState returns the current state. Callers must treat it as read-only.
func (s *Store[S]) GetState() S {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Version increases by one with every state change.
func (s *Store[S]) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Dispatch runs the action through the middleware chain and the reducer.
// Subscribers are notified synchronously once the new state is in place.
func (s *Store[S]) Dispatch(a Action) {
	s.gate.Lock()
	changed := s.run(a)
	s.gate.Unlock()

	if changed {
		s.notify()
	}
}

// DispatchIf dispatches a only when cond holds for the current state. The
// check and the dispatch are atomic with respect to other dispatches.
func (s *Store[S]) DispatchIf(cond func(S) bool, a Action) bool {
	s.gate.Lock()
	if !cond(s.GetState()) {
		s.gate.Unlock()
		return false
	}
	changed := s.run(a)
	s.gate.Unlock()

	if changed {
		s.notify()
	}
	return true
}

// Subscribe registers l and returns a function that removes it.
func (s *Store[S]) Subscribe(l Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners = append(s.listeners, listenerEntry{id: id, fn: l})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			for i, e := range s.listeners {
				if e.id == id {
					s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
					break
				}
			}
			s.mu.Unlock()
		})
	}
}

// run must be called with gate held.
func (s *Store[S]) run(a Action) bool {
	s.changed = false
	s.dispatch(a)
	return s.changed
}

func (s *Store[S]) reduce(a Action) {
	s.mu.RLock()
	cur := s.state
	s.mu.RUnlock()

	next, changed := s.reducer(cur, a)
	if !changed {
		return
	}

	s.mu.Lock()
	s.state = next
	s.version++
	s.mu.Unlock()
	s.changed = true
}

func (s *Store[S]) notify() {
	s.mu.RLock()
	ls := s.listeners
	s.mu.RUnlock()

	for _, e := range ls {
		e.fn()
	}
}
