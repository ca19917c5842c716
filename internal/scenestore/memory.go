package scenestore

import (
	"context"
	"fmt"
	"sync"

	"github.com/specialistvlad/macrograph/internal/element"
)

// Memory is an in-process Store. Documents are copied on save.
type Memory struct {
	mu     sync.RWMutex
	scenes map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{scenes: make(map[string][]byte)}
}

// Load implements Store.
func (m *Memory) Load(_ context.Context, id string) (*element.Snapshot, error) {
	m.mu.RLock()
	doc, ok := m.scenes[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSceneNotFound, id)
	}
	return Decode(doc)
}

// Save implements Store.
func (m *Memory) Save(_ context.Context, id string, doc []byte) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	if _, err := Decode(doc); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scenes[id] = append([]byte(nil), doc...)
	return nil
}
