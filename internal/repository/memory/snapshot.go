package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/utafrali/storefront/internal/repository"
)

// SnapshotRepository keeps snapshots as JSON bytes in process memory, the
// stand-in for browser local storage. A positive maxBytes caps the total
// stored size.
type SnapshotRepository struct {
	mu       sync.RWMutex
	data     map[string][]byte
	size     int
	maxBytes int
}

var _ repository.SnapshotRepository = (*SnapshotRepository)(nil)

// NewSnapshotRepository creates an empty store. maxBytes <= 0 means
// unlimited.
func NewSnapshotRepository(maxBytes int) *SnapshotRepository {
	return &SnapshotRepository{data: make(map[string][]byte), maxBytes: maxBytes}
}

// Load implements repository.SnapshotRepository.
func (r *SnapshotRepository) Load(_ context.Context, key string, dst any) (bool, error) {
	r.mu.RLock()
	raw, ok := r.data[key]
	r.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("unmarshal snapshot %s: %w", key, err)
	}
	return true, nil
}

// Save implements repository.SnapshotRepository.
func (r *SnapshotRepository) Save(_ context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal snapshot %s: %w", key, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	newSize := r.size - len(r.data[key]) + len(raw)
	if r.maxBytes > 0 && newSize > r.maxBytes {
		return fmt.Errorf("save snapshot %s (%d bytes): %w", key, len(raw), repository.ErrQuotaExceeded)
	}
	r.data[key] = raw
	r.size = newSize
	return nil
}

// Delete implements repository.SnapshotRepository.
func (r *SnapshotRepository) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.size -= len(r.data[key])
	delete(r.data, key)
	return nil
}

// Len returns the number of stored snapshots.
func (r *SnapshotRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.data)
}
