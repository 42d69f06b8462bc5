// Package rediscache implements store.StatusCache on Redis. Snapshots are
// stored as JSON under task:<id> with a TTL.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cheerforge/cheerforge/internal/config"
	"github.com/cheerforge/cheerforge/internal/domain"
	"github.com/cheerforge/cheerforge/internal/store"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "task:"

// Key returns the Redis key holding the snapshot for taskID.
func Key(taskID string) string {
	return keyPrefix + taskID
}

// StatusCache implements store.StatusCache and store.Pinger.
type StatusCache struct {
	client *redis.Client
}

var (
	_ store.StatusCache = (*StatusCache)(nil)
	_ store.Pinger      = (*StatusCache)(nil)
)

// NewStatusCache wraps an existing client.
func NewStatusCache(client *redis.Client) *StatusCache {
	return &StatusCache{client: client}
}

// Connect creates a client for cfg and pings it. The returned cache is
// non-nil and usable even when the ping fails, since Redis may become
// reachable later.
func Connect(ctx context.Context, cfg config.RedisConfig) (*StatusCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		PoolTimeout:  5 * time.Second,
	})

	c := NewStatusCache(client)
	if err := c.Ping(ctx); err != nil {
		return c, err
	}
	return c, nil
}

// Put implements store.StatusCache.
func (c *StatusCache) Put(ctx context.Context, rec *domain.StatusRecord, ttl time.Duration) error {
	if rec == nil || rec.TaskID == "" {
		return fmt.Errorf("%w: record without task id", store.ErrInvalidEntity)
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode status snapshot: %w", err)
	}
	if err := c.client.Set(ctx, Key(rec.TaskID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache status snapshot: %w", err)
	}
	return nil
}

// Get implements store.StatusCache.
func (c *StatusCache) Get(ctx context.Context, taskID string) (*domain.StatusRecord, error) {
	data, err := c.client.Get(ctx, Key(taskID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, store.ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to read status snapshot: %w", err)
	}

	var rec domain.StatusRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode status snapshot: %w", err)
	}
	return &rec, nil
}

// Ping implements store.Pinger.
func (c *StatusCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (c *StatusCache) Close() error {
	return c.client.Close()
}
