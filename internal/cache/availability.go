// Package cache provides an optional Redis read-through cache for
// availability responses. A nil client disables caching entirely.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Availability caches computed slot views per (business, date, service).
// Invalidation bumps a version counter for the (business, date) pair instead
// of scanning keys, so stale entries simply age out by TTL.
type Availability struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zerolog.Logger
}

// NewAvailability creates the cache. rdb may be nil to disable caching.
func NewAvailability(rdb *redis.Client, ttl time.Duration, logger *zerolog.Logger) *Availability {
	return &Availability{rdb: rdb, ttl: ttl, logger: logger}
}

func (c *Availability) enabled() bool {
	return c != nil && c.rdb != nil && c.ttl > 0
}

func versionKey(businessID uuid.UUID, date string) string {
	return fmt.Sprintf("availver:%s:%s", businessID, date)
}

func (c *Availability) entryKey(ctx context.Context, businessID uuid.UUID, date, serviceKey string) string {
	version, err := c.rdb.Get(ctx, versionKey(businessID, date)).Int64()
	if err != nil && err != redis.Nil {
		version = -1 // cache effectively bypassed on read errors
	}
	return fmt.Sprintf("avail:%s:%s:%s:v%d", businessID, date, serviceKey, version)
}

// Get loads a cached view into out. Returns false on miss or any cache error.
func (c *Availability) Get(ctx context.Context, businessID uuid.UUID, date, serviceKey string, out any) bool {
	if !c.enabled() {
		return false
	}
	val, err := c.rdb.Get(ctx, c.entryKey(ctx, businessID, date, serviceKey)).Result()
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(val), out); err != nil {
		c.logger.Warn().Err(err).Msg("availability cache: bad payload")
		return false
	}
	return true
}

// Set stores a view. Failures are logged, never surfaced.
func (c *Availability) Set(ctx context.Context, businessID uuid.UUID, date, serviceKey string, val any) {
	if !c.enabled() {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		c.logger.Warn().Err(err).Msg("availability cache: marshal")
		return
	}
	if err := c.rdb.Set(ctx, c.entryKey(ctx, businessID, date, serviceKey), data, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("availability cache: set")
	}
}

// Invalidate drops every cached view for the (business, date) pair by
// bumping its version. Called after a booking is created or transitioned.
func (c *Availability) Invalidate(ctx context.Context, businessID uuid.UUID, date string) {
	if !c.enabled() {
		return
	}
	key := versionKey(businessID, date)
	if err := c.rdb.Incr(ctx, key).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("availability cache: invalidate")
		return
	}
	// Version keys outlive entries a little so concurrent readers see the bump.
	_ = c.rdb.Expire(ctx, key, c.ttl*10).Err()
}

// InvalidateUpcoming bumps the version for [from, from+days) dates. Used
// when a business's weekly schedule changes and every cached future view
// becomes stale at once.
func (c *Availability) InvalidateUpcoming(ctx context.Context, businessID uuid.UUID, from time.Time, days int) {
	if !c.enabled() {
		return
	}
	for i := 0; i < days; i++ {
		c.Invalidate(ctx, businessID, from.AddDate(0, 0, i).Format("2006-01-02"))
	}
}
