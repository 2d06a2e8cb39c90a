package storage

import (
	"context"
	"sync"
)

// MemoryBackend keeps slices in a map. Nothing survives the process.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		data: make(map[string][]byte),
	}
}

// Load returns a copy of the stored value
func (m *MemoryBackend) Load(ctx context.Context, slice string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.data[slice]
	if !ok {
		return nil, ErrNotFound
	}

	result := make([]byte, len(value))
	copy(result, value)
	return result, nil
}

// Save stores a copy of value
func (m *MemoryBackend) Save(ctx context.Context, slice string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	m.data[slice] = stored
	return nil
}
