// ABOUTME: In-memory repository used for degraded mode and tests
// ABOUTME: Thread-safe map of record copies
package db

import (
	"context"
	"sync"
)

type MemoryRepository struct {
	mu      sync.RWMutex
	records map[string][]byte
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[string][]byte)}
}

func (r *MemoryRepository) Name() string {
	return BackendMemory
}

func (r *MemoryRepository) Get(_ context.Context, key string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	value, ok := r.records[key]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return append([]byte(nil), value...), nil
}

func (r *MemoryRepository) PutAll(_ context.Context, records map[string][]byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, value := range records {
		r.records[key] = append([]byte(nil), value...)
	}
	return nil
}

func (r *MemoryRepository) Close() error {
	return nil
}
