package shared

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SnapshotCache keeps the last successfully fetched copy of a list in Redis.
type SnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSnapshotCache constructs a SnapshotCache. A zero ttl defaults to one hour.
func NewSnapshotCache(client *redis.Client, ttl time.Duration) *SnapshotCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SnapshotCache{client: client, ttl: ttl}
}

// SnapshotKey namespaces a snapshot by owner and collection.
func SnapshotKey(owner, collection string) string {
	return fmt.Sprintf("fairdesk:snapshot:%s:%s", owner, collection)
}

// Save stores v as JSON under key.
func (c *SnapshotCache) Save(ctx context.Context, key string, v any) error {
	if c == nil || c.client == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("snapshot encode: %w", err)
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

// Load decodes the snapshot under key into v and reports whether one existed.
func (c *SnapshotCache) Load(ctx context.Context, key string, v any) (bool, error) {
	if c == nil || c.client == nil {
		return false, nil
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("snapshot decode: %w", err)
	}
	return true, nil
}
