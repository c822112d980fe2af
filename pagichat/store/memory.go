// Package store provides persistent key-value backends for the client's
// identity: an in-memory one for tests and throwaway sessions, and a
// PebbleDB-backed one that survives restarts.
package store

import "sync"

// Memory is a process-local store. It satisfies pagichat.Store but forgets
// everything on exit, so a client using it always handshakes fresh.
type Memory struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

// Get returns the stored value, or "" when the key is absent.
func (m *Memory) Get(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key], nil
}

// Set stores value under key.
func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}
