package repository

import (
	"context"
	"sync"
)

// MemoryKeyValueRepository keeps values in process memory. Used by tests and by
// short-lived sessions that do not need persistence.
type MemoryKeyValueRepository struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemoryKeyValueRepository creates an empty MemoryKeyValueRepository
func NewMemoryKeyValueRepository() *MemoryKeyValueRepository {
	return &MemoryKeyValueRepository{values: make(map[string][]byte)}
}

var _ KeyValueRepositoryInterface = (*MemoryKeyValueRepository)(nil)

func (r *MemoryKeyValueRepository) Get(_ context.Context, key string) ([]byte, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (r *MemoryKeyValueRepository) Set(_ context.Context, key string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[key] = append([]byte(nil), value...)
	return nil
}

func (r *MemoryKeyValueRepository) Remove(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.values, key)
	return nil
}

func (r *MemoryKeyValueRepository) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = make(map[string][]byte)
	return nil
}
