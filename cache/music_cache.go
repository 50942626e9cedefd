// Package cache keeps hot catalog records in Redis so single-record reads
// skip MySQL. A failing Redis only ever degrades to repository reads.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"tunemart/logger"
	"tunemart/model"
)

// MusicCache is a read-through cache for catalog records.
type MusicCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewMusicCache wraps a Redis client. ttl bounds staleness after writes
// that bypass invalidation.
func NewMusicCache(client *redis.Client, ttl time.Duration, log *logger.Logger) *MusicCache {
	return &MusicCache{client: client, ttl: ttl, log: log}
}

func musicKey(id int64) string {
	return fmt.Sprintf("music:%d", id)
}

// Get returns the cached record and true on a hit.
func (c *MusicCache) Get(ctx context.Context, id int64) (*model.Music, bool) {
	data, err := c.client.Get(ctx, musicKey(id)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("music cache read failed", logger.Int64("musicId", id), logger.ErrorField(err))
		}
		return nil, false
	}
	m := &model.Music{}
	if err := json.Unmarshal(data, m); err != nil {
		c.log.Warn("music cache entry corrupt, dropping", logger.Int64("musicId", id), logger.ErrorField(err))
		c.Invalidate(ctx, id)
		return nil, false
	}
	return m, true
}

// Set stores a record. Failures are logged, never surfaced.
func (c *MusicCache) Set(ctx context.Context, m *model.Music) {
	data, err := json.Marshal(m)
	if err != nil {
		c.log.Warn("music cache marshal failed", logger.Int64("musicId", m.ID), logger.ErrorField(err))
		return
	}
	if err := c.client.Set(ctx, musicKey(m.ID), data, c.ttl).Err(); err != nil {
		c.log.Warn("music cache write failed", logger.Int64("musicId", m.ID), logger.ErrorField(err))
	}
}

// Invalidate drops a record from the cache.
func (c *MusicCache) Invalidate(ctx context.Context, id int64) {
	if err := c.client.Del(ctx, musicKey(id)).Err(); err != nil {
		c.log.Warn("music cache invalidation failed", logger.Int64("musicId", id), logger.ErrorField(err))
	}
}
