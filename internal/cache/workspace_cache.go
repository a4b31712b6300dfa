package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "crm:ws:"

const (
	KindSearch    = "search"
	KindDashboard = "dashboard"
)

// WorkspaceCache caches JSON read models (quick search, dashboard metrics) per workspace in Redis.
type WorkspaceCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewWorkspaceCache returns a new WorkspaceCache.
func NewWorkspaceCache(rdb *redis.Client, ttl time.Duration) *WorkspaceCache {
	return &WorkspaceCache{rdb: rdb, ttl: ttl}
}

// Key builds the Redis key for kind and an optional sub-key such as a search query.
func Key(workspaceID, kind, sub string) string {
	k := keyPrefix + workspaceID + ":" + kind
	if sub != "" {
		k += ":" + NormalizeQuery(sub)
	}
	return k
}

// Get decodes the cached value into dst. It reports false on a miss.
func (c *WorkspaceCache) Get(ctx context.Context, workspaceID, kind, sub string, dst any) (bool, error) {
	b, err := c.rdb.Get(ctx, Key(workspaceID, kind, sub)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return false, err
	}
	return true, nil
}

// Set stores v in cache.
func (c *WorkspaceCache) Set(ctx context.Context, workspaceID, kind, sub string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, Key(workspaceID, kind, sub), b, c.ttl).Err()
}

// Invalidate removes every cached entry of the workspace (cache invalidation on write).
func (c *WorkspaceCache) Invalidate(ctx context.Context, workspaceID string) error {
	iter := c.rdb.Scan(ctx, 0, keyPrefix+workspaceID+":*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func NormalizeQuery(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}
