package session

import (
	"context"
	"sync"
)

// MemoryStore хранит состояния в памяти процесса
type MemoryStore struct {
	data map[int64]State
	mu   sync.RWMutex
}

// NewMemoryStore создаёт новый MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[int64]State)}
}

func (m *MemoryStore) Get(_ context.Context, userID int64) (State, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.data[userID]
	return state, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, userID int64, state State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[userID] = state
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, userID)
	return nil
}
