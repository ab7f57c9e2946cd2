// Package cache provides the redis-backed permission decision cache.
// A nil *Decisions (or one built with no client) is a no-op, so the
// engine runs unchanged without redis configured.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"snd/internal/domain/rbac"
)

const keyPrefix = "snd:perm"

type Decisions struct {
	client *redis.Client
	ttl    time.Duration
}

func NewDecisions(client *redis.Client, ttl time.Duration) *Decisions {
	return &Decisions{client: client, ttl: ttl}
}

// Connect parses a redis URL and returns a ready client, or nil for "".
func Connect(url string) (*redis.Client, error) {
	if url == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opts), nil
}

func key(userID, permission string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, userID, permission)
}

// Get returns a cached decision. Read errors fall through to a cache miss;
// the caller re-resolves against the store and never fails open.
func (d *Decisions) Get(ctx context.Context, userID, permission string) (rbac.Decision, bool) {
	if d == nil || d.client == nil {
		return rbac.Decision{}, false
	}
	raw, err := d.client.Get(ctx, key(userID, permission)).Result()
	if err == redis.Nil {
		return rbac.Decision{}, false
	}
	if err != nil {
		slog.Warn("decision cache read failed", "err", err)
		return rbac.Decision{}, false
	}
	var decision rbac.Decision
	if err := json.Unmarshal([]byte(raw), &decision); err != nil {
		return rbac.Decision{}, false
	}
	return decision, true
}

func (d *Decisions) Set(ctx context.Context, userID, permission string, decision rbac.Decision) {
	if d == nil || d.client == nil {
		return
	}
	raw, err := json.Marshal(decision)
	if err != nil {
		return
	}
	if err := d.client.Set(ctx, key(userID, permission), raw, d.ttl).Err(); err != nil {
		slog.Warn("decision cache write failed", "err", err)
	}
}

func (d *Decisions) InvalidateUser(ctx context.Context, userID string) {
	d.invalidate(ctx, fmt.Sprintf("%s:%s:*", keyPrefix, userID))
}

func (d *Decisions) InvalidateAll(ctx context.Context) {
	d.invalidate(ctx, keyPrefix+":*")
}

func (d *Decisions) invalidate(ctx context.Context, pattern string) {
	if d == nil || d.client == nil {
		return
	}
	keys, err := d.client.Keys(ctx, pattern).Result()
	if err != nil {
		slog.Warn("decision cache invalidation failed", "pattern", pattern, "err", err)
		return
	}
	if len(keys) > 0 {
		if err := d.client.Del(ctx, keys...).Err(); err != nil {
			slog.Warn("decision cache delete failed", "err", err)
		}
	}
}
