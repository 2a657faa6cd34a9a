// Package cache provides a read-through Redis cache in front of the product
// repository. The record store is a remote service, so hot catalog reads are
// served from cache and refreshed on expiry or admin writes.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/freshcart/storefront/internal/domain/product"
)

const (
	keyProduct  = "freshcart:product:"
	keyCatalog  = "freshcart:products:all"
	keyFeatured = "freshcart:products:featured"
	keyTrending = "freshcart:products:trending"
)

var (
	_ product.Repository = (*ProductCache)(nil)
	_ product.Writer     = (*ProductCache)(nil)
)

// ProductCache decorates a repository and writer pair. Cache failures are
// never surfaced: a miss or a broken Redis falls back to the origin.
type ProductCache struct {
	repo   product.Repository
	writer product.Writer
	client *redis.Client
	ttl    time.Duration
}

func NewProductCache(repo product.Repository, writer product.Writer, client *redis.Client, ttl time.Duration) *ProductCache {
	return &ProductCache{repo: repo, writer: writer, client: client, ttl: ttl}
}

func (c *ProductCache) List(ctx context.Context) ([]product.Product, error) {
	return cachedList(ctx, c, keyCatalog, c.repo.List)
}

func (c *ProductCache) GetByID(ctx context.Context, id string) (product.Product, error) {
	if data, err := c.client.Get(ctx, keyProduct+id).Bytes(); err == nil {
		var p product.Product
		if err := json.Unmarshal(data, &p); err == nil {
			return p, nil
		}
	}

	p, err := c.repo.GetByID(ctx, id)
	if err != nil {
		return product.Product{}, err
	}
	c.store(ctx, keyProduct+id, p)
	return p, nil
}

func (c *ProductCache) GetByIDs(ctx context.Context, ids []string) ([]product.Product, error) {
	return c.repo.GetByIDs(ctx, ids)
}

func (c *ProductCache) GetByCategory(ctx context.Context, category string) ([]product.Product, error) {
	return c.repo.GetByCategory(ctx, category)
}

func (c *ProductCache) Search(ctx context.Context, query, category string) ([]product.Product, error) {
	return c.repo.Search(ctx, query, category)
}

func (c *ProductCache) Featured(ctx context.Context) ([]product.Product, error) {
	return cachedList(ctx, c, keyFeatured, c.repo.Featured)
}

func (c *ProductCache) Trending(ctx context.Context) ([]product.Product, error) {
	return cachedList(ctx, c, keyTrending, c.repo.Trending)
}

func (c *ProductCache) Recommended(ctx context.Context, id string, limit int) ([]product.Product, error) {
	return c.repo.Recommended(ctx, id, limit)
}

func (c *ProductCache) FrequentlyBoughtWith(ctx context.Context, id string, limit int) ([]product.Product, error) {
	return c.repo.FrequentlyBoughtWith(ctx, id, limit)
}

func (c *ProductCache) Create(ctx context.Context, p product.Product) (product.Product, error) {
	created, err := c.writer.Create(ctx, p)
	if err != nil {
		return product.Product{}, err
	}
	c.invalidate(ctx, created.ID)
	return created, nil
}

func (c *ProductCache) Update(ctx context.Context, p product.Product) (product.Product, error) {
	updated, err := c.writer.Update(ctx, p)
	if err != nil {
		return product.Product{}, err
	}
	c.invalidate(ctx, updated.ID)
	return updated, nil
}

func (c *ProductCache) Delete(ctx context.Context, id string) error {
	if err := c.writer.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

func (c *ProductCache) SetFeaturedOrder(ctx context.Context, ids []string) error {
	if err := c.writer.SetFeaturedOrder(ctx, ids); err != nil {
		return err
	}
	keys := append([]string{keyCatalog, keyFeatured, keyTrending}, productKeys(ids)...)
	c.drop(ctx, keys...)
	return nil
}

func (c *ProductCache) DecrementStock(ctx context.Context, id string, qty int) error {
	if err := c.writer.DecrementStock(ctx, id, qty); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

func cachedList(ctx context.Context, c *ProductCache, key string, origin func(context.Context) ([]product.Product, error)) ([]product.Product, error) {
	if data, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var products []product.Product
		if err := json.Unmarshal(data, &products); err == nil {
			return products, nil
		}
	}

	products, err := origin(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, products)
	return products, nil
}

func (c *ProductCache) store(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		zctx.From(ctx).Warn("Cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *ProductCache) invalidate(ctx context.Context, id string) {
	c.drop(ctx, keyProduct+id, keyCatalog, keyFeatured, keyTrending)
}

func (c *ProductCache) drop(ctx context.Context, keys ...string) {
	if err := c.client.Del(ctx, keys...).Err(); err != nil && !errors.Is(err, redis.Nil) {
		zctx.From(ctx).Warn("Cache invalidation failed", zap.Error(err))
	}
}

func productKeys(ids []string) []string {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = keyProduct + id
	}
	return keys
}
