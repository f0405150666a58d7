// Package cache provides a Redis-backed read cache for per-event
// registration lists, so repeated console opens don't hammer the store. The
// cache is advisory: misses and Redis failures fall through to the store,
// and every review decision invalidates the event's entry before the
// authoritative refetch.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	platformredis "ensemble/internal/platform/redis"
	"ensemble/internal/review/models"
	id "ensemble/pkg/domain"
)

// RegistrationCache stores serialized registration lists keyed by event.
// A nil *RegistrationCache is valid and behaves as a permanent miss, which
// keeps wiring simple when Redis is not configured.
type RegistrationCache struct {
	client *platformredis.Client
	ttl    time.Duration
}

// New builds a cache over the shared Redis client. Pass the TTL that bounds
// acceptable staleness; entries expire on their own even if invalidation is
// missed.
func New(client *platformredis.Client, ttl time.Duration) *RegistrationCache {
	if client == nil {
		return nil
	}
	return &RegistrationCache{client: client, ttl: ttl}
}

func key(eventID id.EventID) string {
	return fmt.Sprintf("ensemble:registrations:%s", eventID)
}

// Get returns the cached list for an event. The second return reports a hit;
// corrupt or missing entries are misses, never errors.
func (c *RegistrationCache) Get(ctx context.Context, eventID id.EventID) ([]models.Registration, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, key(eventID)).Bytes()
	if err != nil {
		return nil, false
	}
	var regs []models.Registration
	if err := json.Unmarshal(raw, &regs); err != nil {
		// Corrupt entry; drop it so the next fetch repopulates.
		_ = c.client.Del(ctx, key(eventID)).Err()
		return nil, false
	}
	return regs, true
}

// Set stores the list for an event with the configured TTL.
func (c *RegistrationCache) Set(ctx context.Context, eventID id.EventID, regs []models.Registration) error {
	if c == nil {
		return nil
	}
	raw, err := json.Marshal(regs)
	if err != nil {
		return fmt.Errorf("marshal registrations: %w", err)
	}
	if err := c.client.Set(ctx, key(eventID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache registrations: %w", err)
	}
	return nil
}

// Invalidate drops the cached list for an event.
func (c *RegistrationCache) Invalidate(ctx context.Context, eventID id.EventID) error {
	if c == nil {
		return nil
	}
	if err := c.client.Del(ctx, key(eventID)).Err(); err != nil {
		return fmt.Errorf("invalidate registrations cache: %w", err)
	}
	return nil
}
