package repository

import (
	"context"
	"slices"
	"sync"
)

// MemoryStateRepository keeps state in process memory. It backs tests and
// the degraded mode used when no durable store can be opened.
type MemoryStateRepository struct {
	mu      sync.RWMutex
	values  map[string][]byte
	saveErr error
}

// NewMemoryStateRepository creates an empty in-memory repository
func NewMemoryStateRepository() *MemoryStateRepository {
	return &MemoryStateRepository{values: make(map[string][]byte)}
}

// Load returns the value stored under key
func (r *MemoryStateRepository) Load(_ context.Context, key string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	value, ok := r.values[key]
	if !ok {
		return nil, ErrStateNotFound
	}
	return slices.Clone(value), nil
}

// Save replaces the value stored under key
func (r *MemoryStateRepository) Save(_ context.Context, key string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.saveErr != nil {
		return r.saveErr
	}
	r.values[key] = slices.Clone(value)
	return nil
}

// FailSaves makes every subsequent Save return err; nil restores normal behavior
func (r *MemoryStateRepository) FailSaves(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saveErr = err
}

// Describe names the backend for logs and backups
func (r *MemoryStateRepository) Describe() string {
	return "memory"
}
