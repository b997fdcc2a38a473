package redis

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/coverline/pkg/config"
)

func disabledClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(&config.Config{Redis: config.RedisConfig{Enabled: false}})
	require.NoError(t, err)
	return client
}

func TestNewClient_Disabled(t *testing.T) {
	client := disabledClient(t)
	assert.False(t, client.Enabled())
	assert.NoError(t, client.Close())
}

func TestRateLimiter_Disabled(t *testing.T) {
	limiter := NewRateLimiter(disabledClient(t), "test")
	cfg := APIRateLimit("127.0.0.1", 5)

	// When Redis is disabled, all requests should be allowed
	allowed, remaining, err := limiter.Allow(context.Background(), cfg)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, cfg.Limit, remaining)
}

func TestCache_Disabled(t *testing.T) {
	cache := NewCache(disabledClient(t), "test")
	ctx := context.Background()

	// When Redis is disabled, cache operations should be no-ops
	assert.NoError(t, cache.Set(ctx, "key", "value", TTLShort))

	var result string
	found, err := cache.Get(ctx, "key", &result)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCache_GetOrSetDisabledCallsLoader(t *testing.T) {
	cache := NewCache(disabledClient(t), "test")

	calls := 0
	var out map[string]int
	err := cache.GetOrSet(context.Background(), "k", &out, TTLShort, func() (interface{}, error) {
		calls++
		return map[string]int{"premium": 1200}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1200, out["premium"])
}

// unreachableClient is enabled but every command fails
func unreachableClient(t *testing.T) *Client {
	t.Helper()
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })
	return &Client{rdb: rdb, enabled: true}
}

func TestCache_GetOrSetReturnsLoadedValueWhenRedisFails(t *testing.T) {
	type quote struct {
		ID    string
		Total int64
	}
	cache := NewCache(unreachableClient(t), "test")

	var q quote
	err := cache.GetOrSet(context.Background(), AutoQuoteKey("q-1"), &q, TTLShort, func() (interface{}, error) {
		return quote{ID: "q-1", Total: 11500}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "q-1", q.ID)
	assert.Equal(t, int64(11500), q.Total)
}

func TestLocker_Disabled(t *testing.T) {
	locker := NewLocker(disabledClient(t), "test", time.Second)

	_, err := locker.Lock(context.Background(), "policy:1")
	assert.Error(t, err)
}

func TestCacheKeys(t *testing.T) {
	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"AutoQuoteKey", AutoQuoteKey("q-1"), "quote:auto:q-1"},
		{"HomeQuoteKey", HomeQuoteKey("q-2"), "quote:home:q-2"},
		{"PolicyLockKey", PolicyLockKey("p-9"), "policy:p-9"},
		{"APIRateLimit", APIRateLimit("10.0.0.1", 3).Key, "api:10.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.got)
		})
	}
}
