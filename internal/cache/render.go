// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// renderKeyPrefix is the Valkey key prefix for rendered templates.
	renderKeyPrefix = "render:"

	// DefaultRenderTTL is how long rendered HTML stays cached.
	DefaultRenderTTL = 10 * time.Minute
)

// RenderCache stores rendered email HTML by template id. Templates are
// immutable once saved, so entries only leave on TTL expiry or deletion.
// Cache failures are logged and treated as misses.
type RenderCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRenderCache creates a render cache backed by the given Valkey client.
func NewRenderCache(client *redis.Client, ttl time.Duration) *RenderCache {
	if ttl == 0 {
		ttl = DefaultRenderTTL
	}
	return &RenderCache{client: client, ttl: ttl}
}

// Get returns cached HTML for a template id.
func (rc *RenderCache) Get(ctx context.Context, id string) ([]byte, bool) {
	val, err := rc.client.Get(ctx, renderKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		slog.Warn("render cache get error", "template_id", id, "error", err)
		return nil, false
	}
	slog.Debug("render cache hit", "template_id", id)
	return val, true
}

// Set stores rendered HTML for a template id with the configured TTL.
func (rc *RenderCache) Set(ctx context.Context, id string, html []byte) {
	if err := rc.client.Set(ctx, renderKeyPrefix+id, html, rc.ttl).Err(); err != nil {
		slog.Warn("render cache set error", "template_id", id, "error", err)
	}
}

// Invalidate removes the cached HTML for one template.
func (rc *RenderCache) Invalidate(ctx context.Context, id string) {
	if err := rc.client.Del(ctx, renderKeyPrefix+id).Err(); err != nil {
		slog.Warn("render cache invalidate error", "template_id", id, "error", err)
		return
	}
	slog.Debug("render cache invalidated", "template_id", id)
}

// InvalidateAll removes every cached rendering by scanning for the prefix.
// Used at startup after the layouts change.
func (rc *RenderCache) InvalidateAll(ctx context.Context) {
	var cursor uint64
	var deleted int
	for {
		keys, next, err := rc.client.Scan(ctx, cursor, renderKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("render cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := rc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("render cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("render cache cleared", "deleted", deleted)
	}
}
