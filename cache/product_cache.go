package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/amirfaris/storefront-backend/models"
)

const (
	productCachePrefix     = "product:detail:"
	productListCachePrefix = "products:list:"
)

// DefaultTTL keeps catalog reads fresh enough that a stale stock figure is
// corrected within a minute even without explicit invalidation.
const DefaultTTL = time.Minute

// ProductCache is a read-through Redis cache for catalog endpoints. All
// operations are best-effort: a Redis failure degrades to a database read.
type ProductCache struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewProductCache creates a ProductCache.
func NewProductCache(client *redis.Client, logger *zap.Logger) *ProductCache {
	return &ProductCache{redis: client, ttl: DefaultTTL, logger: logger}
}

// GetProduct retrieves a cached product detail.
func (c *ProductCache) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, bool) {
	data, err := c.redis.Get(ctx, productCachePrefix+id.String()).Bytes()
	if err != nil {
		return nil, false
	}
	var product models.Product
	if err := json.Unmarshal(data, &product); err != nil {
		return nil, false
	}
	return &product, true
}

// SetProduct caches a product detail.
func (c *ProductCache) SetProduct(ctx context.Context, product *models.Product) {
	data, err := json.Marshal(product)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, productCachePrefix+product.ID.String(), data, c.ttl).Err(); err != nil {
		c.logger.Warn("Failed to cache product", zap.Error(err))
	}
}

// GetProductList retrieves a cached product list page.
func (c *ProductCache) GetProductList(ctx context.Context, page, limit int) ([]byte, bool) {
	data, err := c.redis.Get(ctx, listKey(page, limit)).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// SetProductList caches a rendered product list page.
func (c *ProductCache) SetProductList(ctx context.Context, page, limit int, payload []byte) {
	if err := c.redis.Set(ctx, listKey(page, limit), payload, c.ttl).Err(); err != nil {
		c.logger.Warn("Failed to cache product list", zap.Error(err))
	}
}

// InvalidateProduct drops the cached detail for a product, typically after
// its stock changed.
func (c *ProductCache) InvalidateProduct(ctx context.Context, id uuid.UUID) {
	if err := c.redis.Del(ctx, productCachePrefix+id.String()).Err(); err != nil {
		c.logger.Warn("Failed to invalidate product cache",
			zap.String("product_id", id.String()),
			zap.Error(err),
		)
	}
}

func listKey(page, limit int) string {
	return fmt.Sprintf("%s%d:%d", productListCachePrefix, page, limit)
}
