package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func newTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCacheFromClient(client, "mcm"), mr
}

func TestMemoryCache_SetGetRaw(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache(WithMemoryCleanup(0))
	defer mc.Close()

	payload := []byte(`{"_meta":{"cached":false}}`)
	require.NoError(t, mc.Set(ctx, "k", payload, time.Minute))

	var got []byte
	require.NoError(t, mc.Get(ctx, "k", &got))
	assert.Equal(t, payload, got)

	var missing []byte
	assert.ErrorIs(t, mc.Get(ctx, "nope", &missing), ErrCacheMiss)
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)}
	mc := NewMemoryCache(WithMemoryCleanup(0), WithMemoryClock(clock.Now))
	defer mc.Close()

	require.NoError(t, mc.Set(ctx, "short", "v", 10*time.Second))
	require.NoError(t, mc.Set(ctx, "forever", "v", 0))

	clock.Advance(11 * time.Second)

	var s string
	assert.ErrorIs(t, mc.Get(ctx, "short", &s), ErrCacheMiss)
	require.NoError(t, mc.Get(ctx, "forever", &s))
	assert.Equal(t, "v", s)

	ttl, ok := mc.TTL("forever")
	assert.True(t, ok)
	assert.Zero(t, ttl)
}

func TestMemoryCache_SetNX(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache(WithMemoryCleanup(0))
	defer mc.Close()

	ok, err := mc.SetNX(ctx, "baseline:MSFT", map[string]float64{"baseline": 430.12}, 0)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = mc.SetNX(ctx, "baseline:MSFT", map[string]float64{"baseline": 1}, 0)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := GetTyped[map[string]float64](ctx, mc, "baseline:MSFT")
	require.NoError(t, err)
	assert.Equal(t, 430.12, got["baseline"])
}

func TestMemoryCache_EvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Unix(0, 0)}
	mc := NewMemoryCache(WithMemoryCleanup(0), WithMemoryMaxSize(2), WithMemoryClock(clock.Now))
	defer mc.Close()

	require.NoError(t, mc.Set(ctx, "a", "1", 0))
	clock.Advance(time.Second)
	require.NoError(t, mc.Set(ctx, "b", "2", 0))
	clock.Advance(time.Second)

	var s string
	require.NoError(t, mc.Get(ctx, "a", &s))
	clock.Advance(time.Second)
	require.NoError(t, mc.Set(ctx, "c", "3", 0))

	ok, _ := mc.Exists(ctx, "b")
	assert.False(t, ok)
	ok, _ = mc.Exists(ctx, "a", "c")
	assert.True(t, ok)
}

func TestRedisCache_PrefixAndTTL(t *testing.T) {
	ctx := context.Background()
	rc, mr := newTestRedis(t)

	require.NoError(t, rc.Set(ctx, "snapshot:2025-03-14:RTH:1:MSFT", []byte(`{}`), 315*time.Second))
	assert.True(t, mr.Exists("mcm:snapshot:2025-03-14:RTH:1:MSFT"))
	assert.Equal(t, 315*time.Second, mr.TTL("mcm:snapshot:2025-03-14:RTH:1:MSFT"))

	require.NoError(t, rc.Set(ctx, "baseline:MSFT", "430.12", 0))
	assert.Zero(t, mr.TTL("mcm:baseline:MSFT"))

	var raw []byte
	require.NoError(t, rc.Get(ctx, "snapshot:2025-03-14:RTH:1:MSFT", &raw))
	assert.Equal(t, `{}`, string(raw))

	assert.ErrorIs(t, rc.Get(ctx, "missing", &raw), ErrCacheMiss)

	require.NoError(t, rc.Delete(ctx, "baseline:MSFT"))
	assert.False(t, mr.Exists("mcm:baseline:MSFT"))
}

func TestRedisCache_SetNX(t *testing.T) {
	ctx := context.Background()
	rc, _ := newTestRedis(t)

	ok, err := rc.SetNX(ctx, "baseline:CRM", "250", 0)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = rc.SetNX(ctx, "baseline:CRM", "999", 0)
	require.NoError(t, err)
	assert.False(t, ok)

	var s string
	require.NoError(t, rc.Get(ctx, "baseline:CRM", &s))
	assert.Equal(t, "250", s)
}

func TestRedisCache_Unavailable(t *testing.T) {
	ctx := context.Background()
	rc, mr := newTestRedis(t)
	mr.Close()

	var raw []byte
	err := rc.Get(ctx, "k", &raw)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
	assert.Error(t, rc.Ping(ctx))
}

func TestLayeredCache_ReadsThroughRedis(t *testing.T) {
	ctx := context.Background()
	rc, mr := newTestRedis(t)
	lc := NewLayeredCache(rc, WithLayeredMemoryTTL(time.Minute))
	defer lc.memCache.Close()

	require.NoError(t, mr.Set("mcm:coach:latest", `{"lines":["a"]}`))

	var got struct {
		Lines []string `json:"lines"`
	}
	require.NoError(t, lc.Get(ctx, "coach:latest", &got))
	assert.Equal(t, []string{"a"}, got.Lines)

	// served from L1 after redis loses the key
	mr.Del("mcm:coach:latest")
	got.Lines = nil
	require.NoError(t, lc.Get(ctx, "coach:latest", &got))
	assert.Equal(t, []string{"a"}, got.Lines)

	ttl, ok := lc.memCache.TTL("coach:latest")
	assert.True(t, ok)
	assert.LessOrEqual(t, ttl, time.Minute)
}

func TestLayeredCache_SetNXDelegates(t *testing.T) {
	ctx := context.Background()
	rc, mr := newTestRedis(t)
	lc := NewLayeredCache(rc)
	defer lc.memCache.Close()

	require.NoError(t, mr.Set("mcm:baseline:IBM", "180"))

	ok, err := lc.SetNX(ctx, "baseline:IBM", "1", 0)
	require.NoError(t, err)
	assert.False(t, ok)

	var s string
	require.NoError(t, lc.Get(ctx, "baseline:IBM", &s))
	assert.Equal(t, "180", s)
}

func TestGenerateKey(t *testing.T) {
	assert.Equal(t, "baseline:MSFT", GenerateKey("baseline", "MSFT"))
	assert.Equal(t, "snapshot:2025-03-14:RTH:42:MSFT,CRM",
		GenerateKeyWithParams("snapshot", "2025-03-14", "RTH", 42, "MSFT,CRM"))
}
