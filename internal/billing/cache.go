package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/ldrseguros/estetica-backend/pkg/config"
	"github.com/redis/go-redis/v9"
)

// StatusCache holds recently read subscription statuses in Redis so the
// guard-path lookup does not hit the database on every request. The cache is
// optional: with no Redis address configured every call falls through.
type StatusCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStatusCache(cfg *config.RedisConfig) *StatusCache {
	if cfg.Addr == "" {
		return &StatusCache{}
	}
	return &StatusCache{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		ttl: cfg.TTL,
	}
}

func (c *StatusCache) key(tenantID uint) string {
	return fmt.Sprintf("subscription:status:%d", tenantID)
}

// Get returns the cached status, or "" on miss or cache absence
func (c *StatusCache) Get(ctx context.Context, tenantID uint) string {
	if c.client == nil {
		return ""
	}
	val, err := c.client.Get(ctx, c.key(tenantID)).Result()
	if err != nil {
		return ""
	}
	return val
}

// Set stores the status with the configured TTL; errors are ignored
func (c *StatusCache) Set(ctx context.Context, tenantID uint, status string) {
	if c.client == nil {
		return
	}
	c.client.Set(ctx, c.key(tenantID), status, c.ttl)
}

// Invalidate drops the cached status after a webhook-driven change
func (c *StatusCache) Invalidate(ctx context.Context, tenantID uint) {
	if c.client == nil {
		return
	}
	c.client.Del(ctx, c.key(tenantID))
}
