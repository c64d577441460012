package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"taxsafe/internal/compliance/models"
	"taxsafe/pkg/platform/circuit"
)

// RedisCache stores expansions in Redis. Redis is always tried first; once
// the breaker opens, results come from the in-memory fallback until Redis
// has succeeded enough times in a row.
type RedisCache struct {
	client   redis.Cmdable
	ttl      time.Duration
	breaker  *circuit.Breaker
	fallback *InMemory
	logger   *slog.Logger
}

type RedisOption func(*RedisCache)

func WithBreaker(b *circuit.Breaker) RedisOption {
	return func(c *RedisCache) {
		c.breaker = b
	}
}

func WithLogger(logger *slog.Logger) RedisOption {
	return func(c *RedisCache) {
		c.logger = logger
	}
}

func NewRedis(client redis.Cmdable, ttl time.Duration, opts ...RedisOption) *RedisCache {
	c := &RedisCache{
		client:   client,
		ttl:      ttl,
		breaker:  circuit.New("expansion-cache"),
		fallback: NewInMemory(ttl),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]models.DeadlineInstance, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil && !errors.Is(err, redis.Nil) {
		if c.recordFailure(ctx, err) {
			return c.fallback.Get(ctx, key)
		}
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	if !c.recordSuccess(ctx) {
		return c.fallback.Get(ctx, key)
	}
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}

	var instances []models.DeadlineInstance
	if err := json.Unmarshal(raw, &instances); err != nil {
		return nil, false, fmt.Errorf("decode cached expansion: %w", err)
	}
	return instances, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, instances []models.DeadlineInstance) error {
	_ = c.fallback.Set(ctx, key, instances)

	raw, err := json.Marshal(instances)
	if err != nil {
		return fmt.Errorf("encode expansion: %w", err)
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		if c.recordFailure(ctx, err) {
			return nil
		}
		return fmt.Errorf("redis set: %w", err)
	}
	c.recordSuccess(ctx)
	return nil
}

// Degraded reports whether reads are currently served from the fallback.
func (c *RedisCache) Degraded() bool {
	return c.breaker.IsOpen()
}

func (c *RedisCache) recordFailure(ctx context.Context, err error) bool {
	useFallback, change := c.breaker.RecordFailure()
	if change.Opened {
		c.logger.WarnContext(ctx, "circuit opened, serving expansions from memory",
			"breaker", c.breaker.Name(), "error", err)
	}
	return useFallback
}

func (c *RedisCache) recordSuccess(ctx context.Context) bool {
	usePrimary, change := c.breaker.RecordSuccess()
	if change.Closed {
		c.logger.InfoContext(ctx, "circuit closed, redis expansion cache recovered", "breaker", c.breaker.Name())
	}
	return usePrimary
}
