// Package cache keeps minted credentials in Redis for debugging and
// operational visibility. It is never consulted for trust decisions; expiry
// is handled by Redis TTLs, so no cleanup job is needed.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"algogate-backend/models"
)

type CredentialCache struct {
	client *redis.Client
}

// NewCredentialCache connects to Redis and pings it with a short timeout.
// Returns nil on failure so callers can run without the cache.
func NewCredentialCache(addr, password string) *CredentialCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil
	}
	return &CredentialCache{client: client}
}

// Put stores a minted credential keyed by token, expiring with the
// credential itself.
func (c *CredentialCache) Put(ctx context.Context, payload models.CredentialPayload) error {
	ttl := time.Until(time.UnixMilli(payload.Expires))
	if ttl <= 0 {
		return nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal credential: %w", err)
	}
	return c.client.Set(ctx, "credential:"+payload.Token, body, ttl).Err()
}

// Delete removes a consumed credential. Best-effort; the TTL would remove it
// anyway.
func (c *CredentialCache) Delete(ctx context.Context, token string) error {
	return c.client.Del(ctx, "credential:"+token).Err()
}
