// Package cache is a Redis JSON read-through cache for recomputable read models.
//
// Lookups go through a circuit breaker: when Redis keeps failing the cache
// reports misses and callers fall back to the store. Concurrent misses on the
// same key collapse into one load.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/d60-Lab/feelnote-core/internal/metrics"
	"github.com/d60-Lab/feelnote-core/pkg/logger"
)

// Cache wraps a redis client with TTL, breaker and singleflight.
type Cache struct {
	name  string
	rdb   redis.UniversalClient
	ttl   time.Duration
	cb    *gobreaker.CircuitBreaker[any]
	group singleflight.Group
}

// New builds a cache; name prefixes every key and labels metrics.
func New(rdb redis.UniversalClient, name string, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "redis:" + name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("cache breaker state change",
				zap.String("breaker", name), zap.String("from", from.String()), zap.String("to", to.String()))
		},
	})
	return &Cache{name: name, rdb: rdb, ttl: ttl, cb: cb}
}

func (c *Cache) key(k string) string { return c.name + ":" + k }

// BreakerState exposes the breaker state for health checks.
func (c *Cache) BreakerState() string { return c.cb.State().String() }

// GetMany fetches raw values for keys; absent keys are missing from the map.
func (c *Cache) GetMany(ctx context.Context, keys []string) map[string][]byte {
	out := make(map[string][]byte, len(keys))
	if len(keys) == 0 {
		return out
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.key(k)
	}
	v, err := c.cb.Execute(func() (any, error) {
		return c.rdb.MGet(ctx, full...).Result()
	})
	if err != nil {
		metrics.CacheRequests.WithLabelValues(c.name, "error").Add(float64(len(keys)))
		logger.Debug("cache mget failed", zap.String("cache", c.name), zap.Error(err))
		return out
	}
	for i, raw := range v.([]interface{}) {
		s, ok := raw.(string)
		if !ok {
			metrics.CacheRequests.WithLabelValues(c.name, "miss").Inc()
			continue
		}
		metrics.CacheRequests.WithLabelValues(c.name, "hit").Inc()
		out[keys[i]] = []byte(s)
	}
	return out
}

// SetMany stores JSON values in one pipeline. Failures are logged only.
func (c *Cache) SetMany(ctx context.Context, values map[string]any) {
	if len(values) == 0 {
		return
	}
	_, err := c.cb.Execute(func() (any, error) {
		pipe := c.rdb.Pipeline()
		for k, v := range values {
			payload, err := json.Marshal(v)
			if err != nil {
				return nil, err
			}
			pipe.Set(ctx, c.key(k), payload, c.ttl)
		}
		return pipe.Exec(ctx)
	})
	if err != nil {
		logger.Debug("cache set failed", zap.String("cache", c.name), zap.Error(err))
	}
}

// Delete drops keys, e.g. after a write that changes a read model.
func (c *Cache) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.key(k)
	}
	if _, err := c.cb.Execute(func() (any, error) { return c.rdb.Del(ctx, full...).Result() }); err != nil {
		logger.Debug("cache delete failed", zap.String("cache", c.name), zap.Error(err))
	}
}

func (c *Cache) get(ctx context.Context, key string) ([]byte, bool) {
	v, err := c.cb.Execute(func() (any, error) {
		b, err := c.rdb.Get(ctx, c.key(key)).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return b, err
	})
	if err != nil {
		metrics.CacheRequests.WithLabelValues(c.name, "error").Inc()
		return nil, false
	}
	b, _ := v.([]byte)
	if b == nil {
		metrics.CacheRequests.WithLabelValues(c.name, "miss").Inc()
		return nil, false
	}
	metrics.CacheRequests.WithLabelValues(c.name, "hit").Inc()
	return b, true
}

// Fetch returns the cached value for key or loads, stores and returns it.
// Load errors are returned as is and never cached.
func Fetch[T any](ctx context.Context, c *Cache, key string, load func(context.Context) (T, error)) (T, error) {
	if raw, ok := c.get(ctx, key); ok {
		var out T
		if err := json.Unmarshal(raw, &out); err == nil {
			return out, nil
		}
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		res, err := load(ctx)
		if err != nil {
			return nil, err
		}
		c.SetMany(ctx, map[string]any{key: res})
		return res, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Collapse runs load once for all concurrent callers sharing key. Nothing
// is read from or written to Redis; callers store the result themselves.
func Collapse[T any](c *Cache, key string, load func() (T, error)) (T, error) {
	v, err, _ := c.group.Do("collapse:"+key, func() (interface{}, error) {
		return load()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
