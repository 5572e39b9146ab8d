package shared

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// BusyGuard marks a session's mutation on one resource as in flight so a
// double submit from another request is refused instead of re-sent.
type BusyGuard struct {
	client *redis.Client
	ttl    time.Duration
}

// NewBusyGuard constructs a BusyGuard. ttl bounds how long a crashed holder blocks.
func NewBusyGuard(client *redis.Client, ttl time.Duration) *BusyGuard {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &BusyGuard{client: client, ttl: ttl}
}

// BusyKey builds the redis key for a session/resource pair.
func BusyKey(sessionID, resource string) string {
	return fmt.Sprintf("fairdesk:busy:%s:%s", sessionID, resource)
}

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Acquire claims the guard. It returns ErrBusy when already held and a
// release func otherwise. A nil guard always succeeds.
func (g *BusyGuard) Acquire(ctx context.Context, sessionID, resource string) (func(), error) {
	if g == nil || g.client == nil {
		return func() {}, nil
	}
	key := BusyKey(sessionID, resource)
	token := uuid.NewString()
	ok, err := g.client.SetNX(ctx, key, token, g.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("busy guard: %w", err)
	}
	if !ok {
		return nil, ErrBusy
	}
	return func() {
		// Release with a fresh context; the request context may already be done.
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = releaseScript.Run(ctx, g.client, []string{key}, token).Err()
	}, nil
}

// Held reports whether the guard is currently held.
func (g *BusyGuard) Held(ctx context.Context, sessionID, resource string) bool {
	if g == nil || g.client == nil {
		return false
	}
	n, err := g.client.Exists(ctx, BusyKey(sessionID, resource)).Result()
	return err == nil && n > 0
}
