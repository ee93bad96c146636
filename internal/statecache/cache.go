// Package statecache keeps the most recent validated reading per sensor
// identity in Redis so the dashboard can serve current values without a
// table scan.
package statecache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Readings expire so identities that stop reporting clean themselves up.
const defaultTTL = 24 * time.Hour

// Cache stores latest readings keyed by sensor identity.
type Cache struct {
	redis *redis.Client
	ttl   time.Duration
}

// New creates a cache over the Redis client.
func New(client *redis.Client) *Cache {
	return &Cache{redis: client, ttl: defaultTTL}
}

func key(identity string) string {
	return "latest:" + identity
}

// SetLatest stores the validated payload as the identity's current reading.
func (c *Cache) SetLatest(ctx context.Context, identity string, payload []byte) error {
	if err := c.redis.Set(ctx, key(identity), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache latest reading: %w", err)
	}
	return nil
}

// GetLatest returns the identity's current reading. The second return is
// false when the identity has no cached reading.
func (c *Cache) GetLatest(ctx context.Context, identity string) ([]byte, bool, error) {
	data, err := c.redis.Get(ctx, key(identity)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get latest reading: %w", err)
	}
	return data, true, nil
}
