package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MCMTracker/internal/domain/models"
	pkgcache "MCMTracker/pkg/cache"
)

func newStore(t *testing.T) (*pkgcache.RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return pkgcache.NewRedisCacheFromClient(client, "mcm"), mr
}

func ptr(v float64) *float64 { return &v }

func TestParseBaseline(t *testing.T) {
	cases := []struct {
		raw  string
		want *float64
	}{
		{`430.12`, ptr(430.12)},
		{`"250.5"`, ptr(250.5)},
		{`{"baseline":180}`, ptr(180)},
		{`{"baseline":"99.1","source":"manual"}`, ptr(99.1)},
		{`{"baseline":null}`, nil},
		{`{"other":1}`, nil},
		{`"abc"`, nil},
		{``, nil},
		{`NaN`, nil},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			got := ParseBaseline([]byte(tc.raw))
			if tc.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tc.want, *got, 1e-9)
		})
	}
}

func TestBaselineStore_ReturnsStoredValue(t *testing.T) {
	ctx := context.Background()
	rc, mr := newStore(t)
	require.NoError(t, mr.Set("mcm:baseline:MSFT", "430.12"))

	s := NewBaselineStore(rc, nil)
	b, created, err := s.GetOrBootstrap(ctx, "MSFT", ptr(425), "2025-03-14")
	require.NoError(t, err)
	assert.False(t, created)
	require.NotNil(t, b)
	assert.Equal(t, 430.12, *b)

	v, _ := mr.Get("mcm:baseline:MSFT")
	assert.Equal(t, "430.12", v)
}

func TestBaselineStore_Bootstrap(t *testing.T) {
	ctx := context.Background()
	rc, mr := newStore(t)
	s := NewBaselineStore(rc, nil)

	b, created, err := s.GetOrBootstrap(ctx, "CRM", ptr(250.5), "2025-03-14")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 250.5, *b)

	raw, err := mr.Get("mcm:baseline:CRM")
	require.NoError(t, err)
	assert.JSONEq(t, `{"baseline":250.5,"bootstrapped_on":"2025-03-14","source":"previous_close"}`, raw)
	assert.Zero(t, mr.TTL("mcm:baseline:CRM"))

	// a later previous close never replaces it
	b, created, err = s.GetOrBootstrap(ctx, "CRM", ptr(300), "2025-03-17")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 250.5, *b)
}

func TestBaselineStore_NoPreviousClose(t *testing.T) {
	ctx := context.Background()
	rc, mr := newStore(t)
	s := NewBaselineStore(rc, nil)

	b, created, err := s.GetOrBootstrap(ctx, "IBM", nil, "2025-03-14")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Nil(t, b)
	assert.False(t, mr.Exists("mcm:baseline:IBM"))
}

func TestBaselineStore_ReplacesUnreadableRecord(t *testing.T) {
	ctx := context.Background()
	rc, mr := newStore(t)
	require.NoError(t, mr.Set("mcm:baseline:NKE", `{"baseline":"n/a"}`))

	s := NewBaselineStore(rc, nil)
	b, created, err := s.GetOrBootstrap(ctx, "NKE", ptr(72.4), "2025-03-14")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 72.4, *b)
}

func TestBaselineStore_ConcurrentBootstrapConverges(t *testing.T) {
	ctx := context.Background()
	rc, _ := newStore(t)
	s := NewBaselineStore(rc, nil)

	const n = 8
	var wg sync.WaitGroup
	results := make([]float64, n)
	creators := make([]bool, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b, created, err := s.GetOrBootstrap(ctx, "JPM", ptr(float64(200+i)), "2025-03-14")
			assert.NoError(t, err)
			if b != nil {
				results[i] = *b
			}
			creators[i] = created
		}(i)
	}
	wg.Wait()

	winners := 0
	for i := range creators {
		if creators[i] {
			winners++
		}
		assert.Equal(t, results[0], results[i])
	}
	assert.Equal(t, 1, winners)
}

func TestBaselineStore_StoreDown(t *testing.T) {
	ctx := context.Background()
	rc, mr := newStore(t)
	mr.Close()

	s := NewBaselineStore(rc, nil)
	_, _, err := s.GetOrBootstrap(ctx, "MSFT", ptr(1), "2025-03-14")
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)
}

func TestSnapshotCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	rc, mr := newStore(t)
	c := NewSnapshotCache(rc)

	body, err := c.Get(ctx, "snapshot:2025-03-14:RTH:1:MSFT")
	require.NoError(t, err)
	assert.Nil(t, body)

	payload := []byte(`{"_meta":{"session":"RTH"},"MSFT":{"symbol":"MSFT"}}`)
	require.NoError(t, c.Put(ctx, "snapshot:2025-03-14:RTH:1:MSFT", payload, 315*time.Second))
	assert.Equal(t, 315*time.Second, mr.TTL("mcm:snapshot:2025-03-14:RTH:1:MSFT"))

	body, err = c.Get(ctx, "snapshot:2025-03-14:RTH:1:MSFT")
	require.NoError(t, err)
	assert.Equal(t, payload, body)

	mr.FastForward(316 * time.Second)
	body, err = c.Get(ctx, "snapshot:2025-03-14:RTH:1:MSFT")
	require.NoError(t, err)
	assert.Nil(t, body)
}

func TestSnapshotCache_StoreDown(t *testing.T) {
	ctx := context.Background()
	rc, mr := newStore(t)
	mr.Close()

	c := NewSnapshotCache(rc)
	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)
	assert.ErrorIs(t, c.Put(ctx, "k", []byte("{}"), time.Second), models.ErrStoreUnavailable)
}

func TestCoachStore(t *testing.T) {
	ctx := context.Background()
	rc, mr := newStore(t)
	s := NewCoachStore(rc, 0)

	latest, err := s.Latest(ctx)
	require.NoError(t, err)
	assert.Nil(t, latest)

	last, err := s.LastRun(ctx)
	require.NoError(t, err)
	assert.True(t, last.IsZero())

	at := time.UnixMilli(1741962600000)
	res := &models.CoachResult{
		AsOfLocal:  "2025-03-14T14:30:00Z",
		AsOfMarket: "2025-03-14 10:30 NY",
		Session:    models.SessionRTH,
		Symbols:    []string{"MSFT", "CRM"},
		Model:      "gpt-4.1-mini",
		Text:       []string{"MSFT holding baseline", "CRM reflex bounce"},
	}
	require.NoError(t, s.Save(ctx, res, at))

	raw, _ := mr.Get("mcm:coach:last_run_ms")
	assert.Equal(t, "1741962600000", raw)

	latest, err = s.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, res, latest)

	last, err = s.LastRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, at.UnixMilli(), last.UnixMilli())
}

func TestNoopPublisher(t *testing.T) {
	var p NoopPublisher
	assert.NoError(t, p.PublishSnapshotBuilt(context.Background(), &models.SnapshotBuilt{Key: "k"}))
	assert.NoError(t, p.Close())
}
