package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/terragrow/storefront/metrics"
)

// ViewCache stores rendered per-user views, such as the wishlist page.
type ViewCache interface {
	Get(ctx context.Context, view, owner string, dst any) (bool, error)
	Set(ctx context.Context, view, owner string, value any) error
	Invalidate(ctx context.Context, view, owner string) error
}

// RateLimiter answers whether scope is still within limit for the window.
type RateLimiter interface {
	Allow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, error)
}

// Views is the redis-backed ViewCache.
type Views struct {
	client  *Client
	ttl     time.Duration
	metrics *metrics.Metrics
}

func NewViews(client *Client, ttl time.Duration, m *metrics.Metrics) *Views {
	return &Views{client: client, ttl: ttl, metrics: m}
}

func (v *Views) Get(ctx context.Context, view, owner string, dst any) (bool, error) {
	raw, err := v.client.Get(ctx, v.client.ViewKey(view, owner))
	if errors.Is(err, redis.Nil) {
		v.metrics.CacheEvent(view, "miss")
		return false, nil
	}
	if err != nil {
		v.metrics.CacheEvent(view, "error")
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		v.metrics.CacheEvent(view, "error")
		return false, fmt.Errorf("decode cached %s view: %w", view, err)
	}
	v.metrics.CacheEvent(view, "hit")
	return true, nil
}

func (v *Views) Set(ctx context.Context, view, owner string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s view: %w", view, err)
	}
	return v.client.Set(ctx, v.client.ViewKey(view, owner), payload, v.ttl)
}

func (v *Views) Invalidate(ctx context.Context, view, owner string) error {
	v.metrics.CacheEvent(view, "invalidate")
	return v.client.Del(ctx, v.client.ViewKey(view, owner))
}

// Allow lets Client serve as the RateLimiter.
func (c *Client) Allow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, error) {
	ok, _, err := c.FixedWindowAllow(ctx, scope, limit, window)
	return ok, err
}

// Disabled is used when REDIS_URL is empty: nothing is cached and every
// request is allowed.
type Disabled struct{}

func (Disabled) Get(context.Context, string, string, any) (bool, error) { return false, nil }
func (Disabled) Set(context.Context, string, string, any) error         { return nil }
func (Disabled) Invalidate(context.Context, string, string) error       { return nil }
func (Disabled) Allow(context.Context, string, int64, time.Duration) (bool, error) {
	return true, nil
}
