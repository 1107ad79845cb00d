package fsm

import (
	"context"
	"sync"
)

type memoryRecord struct {
	data  map[string]any
	state string
}

// MemoryStorage keeps FSM records in a process-local map. A single mutex
// serializes all mutations, which makes UpdateData an atomic merge even
// when the dispatcher runs handlers concurrently.
type MemoryStorage struct {
	mu      sync.RWMutex
	records map[StorageKey]*memoryRecord
}

// NewMemoryStorage creates an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{records: make(map[StorageKey]*memoryRecord)}
}

func (m *MemoryStorage) record(key StorageKey) *memoryRecord {
	rec, ok := m.records[key]
	if !ok {
		rec = &memoryRecord{data: make(map[string]any)}
		m.records[key] = rec
	}
	return rec
}

// GetData returns a copy of the stored data map.
func (m *MemoryStorage) GetData(_ context.Context, key StorageKey) (map[string]any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[key]
	if !ok {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(rec.data))
	for k, v := range rec.data {
		out[k] = v
	}
	return out, nil
}

func (m *MemoryStorage) SetData(_ context.Context, key StorageKey, data map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.record(key)
	rec.data = make(map[string]any, len(data))
	for k, v := range data {
		rec.data[k] = v
	}
	return nil
}

func (m *MemoryStorage) UpdateData(_ context.Context, key StorageKey, patch map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.record(key)
	for k, v := range patch {
		rec.data[k] = v
	}
	return nil
}

func (m *MemoryStorage) SetState(_ context.Context, key StorageKey, state State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record(key).state = state.String()
	return nil
}

func (m *MemoryStorage) GetState(_ context.Context, key StorageKey) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[key]
	if !ok {
		return "", nil
	}
	return rec.state, nil
}

// Clear drops the whole record, data and state together.
func (m *MemoryStorage) Clear(_ context.Context, key StorageKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.records, key)
	return nil
}

func (m *MemoryStorage) Close() error { return nil }

var _ Storage = (*MemoryStorage)(nil)
