package kv

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps values in memory. Nothing survives a restart.
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string]map[string]string
	closed bool
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string]string)}
}

// Get returns the value for key
func (m *MemoryStore) Get(_ context.Context, namespace, key string) (string, bool, error) {
	if err := validateNamespace(namespace); err != nil {
		return "", false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return "", false, ErrClosed
	}
	v, ok := m.data[namespace][key]
	return v, ok, nil
}

// Set stores value under key
func (m *MemoryStore) Set(_ context.Context, namespace, key, value string) error {
	if err := validateNamespace(namespace); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	ns, ok := m.data[namespace]
	if !ok {
		ns = make(map[string]string)
		m.data[namespace] = ns
	}
	ns[key] = value
	return nil
}

// Delete removes key
func (m *MemoryStore) Delete(_ context.Context, namespace, key string) error {
	if err := validateNamespace(namespace); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	delete(m.data[namespace], key)
	return nil
}

// Keys returns the sorted keys in namespace
func (m *MemoryStore) Keys(_ context.Context, namespace string) ([]string, error) {
	if err := validateNamespace(namespace); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	keys := make([]string, 0, len(m.data[namespace]))
	for k := range m.data[namespace] {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys, nil
}

// Close marks the store closed
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
