package prefs

import (
	"context"
	"sync"
)

// Memory is an in-process store. Entries do not survive restarts; it is the
// default driver and the one tests use.
type Memory struct {
	mu    sync.RWMutex
	users map[string]map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users: make(map[string]map[string][]byte),
	}
}

// Get returns the stored value and whether the key was present.
func (m *Memory) Get(ctx context.Context, userID, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries, ok := m.users[userID]
	if !ok {
		return nil, false, nil
	}
	value, ok := entries[key]
	if !ok {
		return nil, false, nil
	}

	// Return a copy to prevent external mutation
	out := make([]byte, len(value))
	copy(out, value)
	return out, true, nil
}

// Set stores the value, overwriting any previous entry.
func (m *Memory) Set(ctx context.Context, userID, key string, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	m.mu.Lock()
	defer m.mu.Unlock()

	entries, ok := m.users[userID]
	if !ok {
		entries = make(map[string][]byte)
		m.users[userID] = entries
	}
	entries[key] = stored
	return nil
}

// Delete removes the entry if present.
func (m *Memory) Delete(ctx context.Context, userID, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entries, ok := m.users[userID]; ok {
		delete(entries, key)
		if len(entries) == 0 {
			delete(m.users, userID)
		}
	}
	return nil
}

// Close is a no-op for the memory driver.
func (m *Memory) Close() error {
	return nil
}
