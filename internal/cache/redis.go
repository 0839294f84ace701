// Package cache holds the Redis-backed plan catalog cache.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"qacart-backend-go/internal/models"
)

const plansKey = "qacart:plans:active"

// NewRedisClient parses a redis:// URL and verifies the connection.
func NewRedisClient(ctx context.Context, url string, logger *zap.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", opts.Addr, err)
	}
	logger.Info("Successfully connected to Redis", zap.String("addr", opts.Addr))
	return rdb, nil
}

// RedisPlanCache implements core.PlanCache.
type RedisPlanCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisPlanCache creates a plan cache whose entries expire after ttl.
func NewRedisPlanCache(client *redis.Client, ttl time.Duration) *RedisPlanCache {
	return &RedisPlanCache{client: client, ttl: ttl}
}

// GetPlans returns the cached catalog. ok is false on a cache miss.
func (c *RedisPlanCache) GetPlans(ctx context.Context) ([]*models.Plan, bool, error) {
	raw, err := c.client.Get(ctx, plansKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", plansKey, err)
	}
	plans, err := decodePlans(raw)
	if err != nil {
		return nil, false, err
	}
	return plans, true, nil
}

// SetPlans stores the catalog.
func (c *RedisPlanCache) SetPlans(ctx context.Context, plans []*models.Plan) error {
	raw, err := encodePlans(plans)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, plansKey, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", plansKey, err)
	}
	return nil
}

// Invalidate drops the cached catalog.
func (c *RedisPlanCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, plansKey).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", plansKey, err)
	}
	return nil
}

func encodePlans(plans []*models.Plan) ([]byte, error) {
	if plans == nil {
		plans = []*models.Plan{}
	}
	raw, err := json.Marshal(plans)
	if err != nil {
		return nil, fmt.Errorf("encode plans: %w", err)
	}
	return raw, nil
}

func decodePlans(raw []byte) ([]*models.Plan, error) {
	var plans []*models.Plan
	if err := json.Unmarshal(raw, &plans); err != nil {
		return nil, fmt.Errorf("decode cached plans: %w", err)
	}
	return plans, nil
}
