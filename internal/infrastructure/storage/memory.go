// internal/infrastructure/storage/memory.go
package storage

import (
	"context"
	"sync"
)

// Memory keeps client state in process memory. State is lost on restart and
// is not shared between storefront instances.
type Memory struct {
	mu   sync.RWMutex
	data map[string]map[string]string
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{data: make(map[string]map[string]string)}
}

// Get retrieves a value by key
func (m *Memory) Get(ctx context.Context, namespace, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.data[namespace][key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

// Set stores a value under key
func (m *Memory) Set(ctx context.Context, namespace, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	ns, ok := m.data[namespace]
	if !ok {
		ns = make(map[string]string)
		m.data[namespace] = ns
	}
	ns[key] = value
	return nil
}

// Delete removes keys; missing keys are ignored
func (m *Memory) Delete(ctx context.Context, namespace string, keys ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	ns, ok := m.data[namespace]
	if !ok {
		return nil
	}
	for _, key := range keys {
		delete(ns, key)
	}
	if len(ns) == 0 {
		delete(m.data, namespace)
	}
	return nil
}
