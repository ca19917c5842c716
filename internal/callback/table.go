// Package callback provides the one-shot correlation table that routes an
// asynchronous delivery to the caller waiting on it.
package callback

import (
	"errors"
	"sync"
)

// ErrDuplicate is returned when an entry already exists for an id.
var ErrDuplicate = errors.New("callback: entry already registered")

// Table maps ids to one-shot handlers. An entry lives from Register until the
// first Invoke or Remove for its id; after that the id is unknown again.
//
// Deliveries arrive on transport goroutines, so every operation holds the
// table's mutex. Handlers are always called after the lock is released.
type Table[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]func(V)
}

// New creates an empty table.
func New[K comparable, V any]() *Table[K, V] {
	return &Table[K, V]{entries: make(map[K]func(V))}
}

// Register stores fn under id.
func (t *Table[K, V]) Register(id K, fn func(V)) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.entries[id]; exists {
		return ErrDuplicate
	}
	t.entries[id] = fn
	return nil
}

// Invoke removes the entry for id and calls it with v. It reports whether an
// entry was found; an unknown id is a no-op.
func (t *Table[K, V]) Invoke(id K, v V) bool {
	fn, ok := t.take(id)
	if !ok {
		return false
	}
	fn(v)
	return true
}

// Remove drops the entry for id without calling it.
func (t *Table[K, V]) Remove(id K) bool {
	_, ok := t.take(id)
	return ok
}

// Len returns the number of live entries.
func (t *Table[K, V]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

func (t *Table[K, V]) take(id K) (func(V), bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	fn, ok := t.entries[id]
	if ok {
		delete(t.entries, id)
	}
	return fn, ok
}
