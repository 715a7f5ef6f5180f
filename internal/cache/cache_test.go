package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb, "test", time.Minute), mr
}

func TestFetch_LoadsOnceThenHits(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	var loads atomic.Int32
	load := func(context.Context) ([]string, error) {
		loads.Add(1)
		return []string{"a", "b"}, nil
	}

	got, err := Fetch(ctx, c, "k", load)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)

	got, err = Fetch(ctx, c, "k", load)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, int32(1), loads.Load())

	assert.True(t, mr.Exists("test:k"))
	mr.FastForward(2 * time.Minute)
	assert.False(t, mr.Exists("test:k"))
}

func TestFetch_DoesNotCacheErrors(t *testing.T) {
	c, mr := newTestCache(t)
	_, err := Fetch(context.Background(), c, "k", func(context.Context) (int, error) {
		return 0, errors.New("db down")
	})
	assert.EqualError(t, err, "db down")
	assert.False(t, mr.Exists("test:k"))
}

func TestFetch_FallsBackWhenRedisDown(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()

	for i := 0; i < 8; i++ {
		got, err := Fetch(context.Background(), c, "k", func(context.Context) (int, error) { return 42, nil })
		require.NoError(t, err)
		assert.Equal(t, 42, got)
	}
	assert.Equal(t, "open", c.BreakerState())
}

func TestGetManySetMany(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	c.SetMany(ctx, map[string]any{"x": map[string]int{"n": 1}})
	got := c.GetMany(ctx, []string{"x", "y"})
	require.Contains(t, got, "x")
	assert.JSONEq(t, `{"n":1}`, string(got["x"]))
	assert.NotContains(t, got, "y")

	c.Delete(ctx, "x")
	assert.Empty(t, c.GetMany(ctx, []string{"x"}))
}
