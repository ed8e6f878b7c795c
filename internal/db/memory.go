package db

import (
	"context"
	"sync"
)

// * MemoryDB is the store used when no database is configured. Values are
// * copied in and out so callers cannot mutate stored bytes.
type MemoryDB struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

func NewMemoryDB() *MemoryDB {
	return &MemoryDB{entries: make(map[string][]byte)}
}

func (m *MemoryDB) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.entries[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), value...), nil
}

func (m *MemoryDB) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryDB) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
