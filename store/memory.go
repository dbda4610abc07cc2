package store

import (
	"bytes"
	"context"
	"sync"
)

// MemoryStore implements SessionStore in process memory.
// This is useful for testing and short-lived tools; nothing survives a restart.
type MemoryStore struct {
	mu      sync.RWMutex
	session *Session
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save replaces the stored session with a copy of s.
func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	cp := *s
	cp.User = bytes.Clone(s.User)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.session = &cp
	return nil
}

// Load returns a copy of the stored session.
func (m *MemoryStore) Load(_ context.Context) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.session == nil {
		return nil, nil
	}
	cp := *m.session
	cp.User = bytes.Clone(m.session.User)
	return &cp, nil
}

// Clear drops the stored session.
func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.session = nil
	return nil
}

// Close is a no-op for the memory store.
func (m *MemoryStore) Close() error {
	return nil
}
