package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SlotCache caches computed availability listings in Redis for a short TTL.
// Any write to a professional's appointments invalidates every cached date
// for that professional, so a stale listing can only survive between the
// write and the next request.
type SlotCache struct {
	rdb redis.UniversalClient
	ttl time.Duration
}

// NewSlotCache wraps a Redis client. A nil client disables caching; every
// method becomes a no-op miss.
func NewSlotCache(rdb redis.UniversalClient, ttl time.Duration) *SlotCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &SlotCache{rdb: rdb, ttl: ttl}
}

func slotKey(professionalID, serviceID uuid.UUID, date string) string {
	return fmt.Sprintf("slots:%s:%s:%s", professionalID, serviceID, date)
}

func slotPattern(professionalID uuid.UUID) string {
	return fmt.Sprintf("slots:%s:*", professionalID)
}

// Get returns the cached listing for (professional, service, date), or
// ok=false on a miss or any Redis failure. Cache trouble never fails a
// request.
func (c *SlotCache) Get(ctx context.Context, professionalID, serviceID uuid.UUID, date string) ([]Slot, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, slotKey(professionalID, serviceID, date)).Bytes()
	if err != nil {
		return nil, false
	}
	var slots []Slot
	if err := json.Unmarshal(raw, &slots); err != nil {
		return nil, false
	}
	return slots, true
}

// Set stores a computed listing.
func (c *SlotCache) Set(ctx context.Context, professionalID, serviceID uuid.UUID, date string, slots []Slot) {
	if c == nil || c.rdb == nil {
		return
	}
	raw, err := json.Marshal(slots)
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, slotKey(professionalID, serviceID, date), raw, c.ttl).Err()
}

// Invalidate drops every cached listing for the professional.
func (c *SlotCache) Invalidate(ctx context.Context, professionalID uuid.UUID) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	iter := c.rdb.Scan(ctx, 0, slotPattern(professionalID), 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("booking: scan slot cache: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("booking: invalidate slot cache: %w", err)
	}
	return nil
}
