package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/storefront/internal/repository"
)

const keyPrefix = "storefront:"

// SnapshotRepository implements repository.SnapshotRepository using Redis.
// Each snapshot is a JSON string that expires ttl after its last write.
type SnapshotRepository struct {
	client *redis.Client
	ttl    time.Duration
}

var _ repository.SnapshotRepository = (*SnapshotRepository)(nil)

// NewSnapshotRepository creates a new Redis-backed snapshot repository. A
// zero ttl keeps snapshots forever.
func NewSnapshotRepository(client *redis.Client, ttl time.Duration) *SnapshotRepository {
	return &SnapshotRepository{
		client: client,
		ttl:    ttl,
	}
}

// Load retrieves and decodes the snapshot stored under key.
func (r *SnapshotRepository) Load(ctx context.Context, key string, dst any) (bool, error) {
	data, err := r.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis get snapshot: %w", err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("unmarshal snapshot %s: %w", key, err)
	}
	return true, nil
}

// Save writes the snapshot and refreshes its TTL.
func (r *SnapshotRepository) Save(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal snapshot %s: %w", key, err)
	}

	if err := r.client.Set(ctx, keyPrefix+key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set snapshot: %w", err)
	}
	return nil
}

// Delete removes the snapshot stored under key.
func (r *SnapshotRepository) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis del snapshot: %w", err)
	}
	return nil
}
