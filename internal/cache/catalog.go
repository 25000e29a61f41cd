package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"go-pos-inventory/internal/model"
)

const (
	catalogPrefix  = "catalog:"
	catalogKeysSet = "catalog:keys"
)

// Catalog caches the POS catalog listing per search term. Every cached key is
// tracked in a set so a product write can drop them all at once.
type Catalog struct {
	rdb *redis.Client
	ttl time.Duration
	log *slog.Logger
}

func NewCatalog(c *RedisClient, ttl time.Duration, log *slog.Logger) *Catalog {
	return &Catalog{rdb: c.GetClient(), ttl: ttl, log: log}
}

func catalogKey(query string) string {
	return catalogPrefix + strings.ToLower(strings.TrimSpace(query))
}

func (c *Catalog) GetCatalog(ctx context.Context, query string) ([]model.Product, bool) {
	raw, err := c.rdb.Get(ctx, catalogKey(query)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("catalog cache read failed", "err", err)
		}
		return nil, false
	}
	var products []model.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		c.log.Warn("catalog cache entry corrupt", "err", err)
		return nil, false
	}
	return products, true
}

func (c *Catalog) SetCatalog(ctx context.Context, query string, products []model.Product) {
	raw, err := json.Marshal(products)
	if err != nil {
		return
	}
	key := catalogKey(query)
	pipe := c.rdb.TxPipeline()
	pipe.Set(ctx, key, raw, c.ttl)
	pipe.SAdd(ctx, catalogKeysSet, key)
	if _, err := pipe.Exec(ctx); err != nil {
		c.log.Warn("catalog cache write failed", "err", err)
	}
}

func (c *Catalog) Invalidate(ctx context.Context) {
	keys, err := c.rdb.SMembers(ctx, catalogKeysSet).Result()
	if err != nil && err != redis.Nil {
		c.log.Warn("catalog cache invalidate failed", "err", err)
		return
	}
	keys = append(keys, catalogKeysSet)
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn("catalog cache invalidate failed", "err", err)
	}
}
