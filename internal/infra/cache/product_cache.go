package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"marketplace/internal/domain"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

type ProductCache interface {
	Get(ctx context.Context, id uint64) (*domain.Product, bool)
	Set(ctx context.Context, p *domain.Product)
	Invalidate(ctx context.Context, id uint64)
}

var _ ProductCache = (*RedisProductCache)(nil)

type RedisProductCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisProductCache(rdb *redis.Client, ttl time.Duration) *RedisProductCache {
	return &RedisProductCache{rdb: rdb, ttl: ttl}
}

func productKey(id uint64) string {
	return fmt.Sprintf("product:%d", id)
}

func (c *RedisProductCache) Get(ctx context.Context, id uint64) (*domain.Product, bool) {
	cached, err := c.rdb.Get(ctx, productKey(id)).Result()
	if err != nil {
		if err != redis.Nil {
			zap.L().Warn("cache: product get failed", zap.Uint64("product_id", id), zap.Error(err))
		}
		return nil, false
	}
	var p domain.Product
	if err := json.Unmarshal([]byte(cached), &p); err != nil {
		return nil, false
	}
	return &p, true
}

func (c *RedisProductCache) Set(ctx context.Context, p *domain.Product) {
	data, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, productKey(p.ID), data, c.ttl).Err(); err != nil {
		zap.L().Warn("cache: product set failed", zap.Uint64("product_id", p.ID), zap.Error(err))
	}
}

func (c *RedisProductCache) Invalidate(ctx context.Context, id uint64) {
	if err := c.rdb.Del(ctx, productKey(id)).Err(); err != nil {
		zap.L().Warn("cache: product invalidate failed", zap.Uint64("product_id", id), zap.Error(err))
	}
}

// NopProductCache never hits.
type NopProductCache struct{}

func (NopProductCache) Get(context.Context, uint64) (*domain.Product, bool) { return nil, false }
func (NopProductCache) Set(context.Context, *domain.Product)                {}
func (NopProductCache) Invalidate(context.Context, uint64)                  {}
