package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terragrow/storefront/metrics"
)

func TestFixedWindowAllow(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	allowed, count, err := client.FixedWindowAllow(ctx, "forgot:a@b.c", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.EqualValues(t, 1, count)
	require.Len(t, mock.expireCalls, 1)
	assert.Equal(t, "sf:rate_limit:forgot:a@b.c", mock.expireCalls[0].key)

	allowed, count, err = client.FixedWindowAllow(ctx, "forgot:a@b.c", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.EqualValues(t, 2, count)
	assert.Len(t, mock.expireCalls, 1, "expire should only be set on the first hit")

	ok, err := client.Allow(ctx, "forgot:a@b.c", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestViewsRoundTripAndInvalidate(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	client := &Client{store: newMockCmdable()}
	views := NewViews(client, time.Minute, metrics.New(reg))

	var out []string
	hit, err := views.Get(ctx, "/wishlist", "u1", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, views.Set(ctx, "/wishlist", "u1", []string{"p1", "p2"}))
	hit, err = views.Get(ctx, "/wishlist", "u1", &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []string{"p1", "p2"}, out)

	require.NoError(t, views.Invalidate(ctx, "/wishlist", "u1"))
	hit, err = views.Get(ctx, "/wishlist", "u1", &out)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestViewKeysAreScopedPerOwner(t *testing.T) {
	c := &Client{}
	assert.Equal(t, "sf:view:wishlist:u1", c.ViewKey("/wishlist", "u1"))
	assert.NotEqual(t, c.ViewKey("/wishlist", "u1"), c.ViewKey("/wishlist", "u2"))
	assert.Equal(t, "sf:rate_limit:ip", c.RateLimitKey(" ip "))
}

func TestUninitializedClientErrors(t *testing.T) {
	c := &Client{}
	_, err := c.Get(context.Background(), "k")
	assert.Error(t, err)
	assert.Error(t, c.Ping(context.Background()))
	assert.NoError(t, c.Close())
}

func TestDisabledAllowsEverything(t *testing.T) {
	var d Disabled
	ok, err := d.Allow(context.Background(), "x", 0, time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	hit, err := d.Get(context.Background(), "v", "o", new(string))
	require.NoError(t, err)
	assert.False(t, hit)
}

type mockCmdable struct {
	data        map[string]string
	incr        map[string]int64
	expireCalls []expireCall
}

type expireCall struct {
	key string
	ttl time.Duration
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{
		data: make(map[string]string),
		incr: make(map[string]int64),
	}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		m.data[key] = string(v)
	default:
		m.data[key] = fmt.Sprint(v)
	}
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) Incr(_ context.Context, key string) *redis.IntCmd {
	m.incr[key]++
	return redis.NewIntResult(m.incr[key], nil)
}

func (m *mockCmdable) Expire(_ context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	m.expireCalls = append(m.expireCalls, expireCall{key: key, ttl: ttl})
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(m.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}
