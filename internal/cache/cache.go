// Package cache stores computed dashboard payloads per account.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/giannis84/ad-intelligence/internal/scoring"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix        = "dashboard:v1:"
	generationPrefix = "dashboard:gen:"
)

// ErrStale is returned by Set when the account was invalidated after the
// caller read its generation.
var ErrStale = errors.New("dashboard cache entry is stale")

// DashboardCache is consulted before recomputing dashboard metrics.
// Get reports found=false on a miss; it never returns redis.Nil.
//
// Callers read Generation before loading the data they pass to Set. Set
// only stores the payload if no Invalidate happened in between.
type DashboardCache interface {
	Get(ctx context.Context, accountID string) (*scoring.DashboardMetrics, bool, error)
	Generation(ctx context.Context, accountID string) (int64, error)
	Set(ctx context.Context, accountID string, generation int64, metrics *scoring.DashboardMetrics) error
	Invalidate(ctx context.Context, accountID string) error
}

// RedisCache keeps dashboards as JSON strings with a fixed TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// NewRedisClient builds a client from the service settings and checks connectivity.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return client, nil
}

func dashboardKey(accountID string) string {
	return keyPrefix + accountID
}

func generationKey(accountID string) string {
	return generationPrefix + accountID
}

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readGeneration(ctx context.Context, cmd stringGetter, accountID string) (int64, error) {
	gen, err := cmd.Get(ctx, generationKey(accountID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *RedisCache) Get(ctx context.Context, accountID string) (*scoring.DashboardMetrics, bool, error) {
	raw, err := c.client.Get(ctx, dashboardKey(accountID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading dashboard cache: %w", err)
	}

	var metrics scoring.DashboardMetrics
	if err := json.Unmarshal(raw, &metrics); err != nil {
		// A payload written by an incompatible version is treated as a miss.
		return nil, false, nil
	}
	return &metrics, true, nil
}

func (c *RedisCache) Generation(ctx context.Context, accountID string) (int64, error) {
	gen, err := readGeneration(ctx, c.client, accountID)
	if err != nil {
		return 0, fmt.Errorf("reading dashboard generation: %w", err)
	}
	return gen, nil
}

// Set writes the payload inside a WATCH on the generation key, so an
// Invalidate racing with the write aborts it.
func (c *RedisCache) Set(ctx context.Context, accountID string, generation int64, metrics *scoring.DashboardMetrics) error {
	raw, err := json.Marshal(metrics)
	if err != nil {
		return fmt.Errorf("encoding dashboard: %w", err)
	}

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := readGeneration(ctx, tx, accountID)
		if err != nil {
			return err
		}
		if current != generation {
			return ErrStale
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, dashboardKey(accountID), raw, c.ttl)
			return nil
		})
		return err
	}, generationKey(accountID))

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrStale), errors.Is(err, redis.TxFailedErr):
		return ErrStale
	default:
		return fmt.Errorf("writing dashboard cache: %w", err)
	}
}

func (c *RedisCache) Invalidate(ctx context.Context, accountID string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey(accountID))
		pipe.Del(ctx, dashboardKey(accountID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("invalidating dashboard cache: %w", err)
	}
	return nil
}

// NoopCache is used when Redis is not configured. Every Get is a miss.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) (*scoring.DashboardMetrics, bool, error) {
	return nil, false, nil
}

func (NoopCache) Generation(context.Context, string) (int64, error) { return 0, nil }

func (NoopCache) Set(context.Context, string, int64, *scoring.DashboardMetrics) error { return nil }

func (NoopCache) Invalidate(context.Context, string) error { return nil }
