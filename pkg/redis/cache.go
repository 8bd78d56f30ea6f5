package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redisclient "github.com/redis/go-redis/v9"

	"julianmorley.ca/con-plar/storefront-checkout/pkg/models"
)

var ErrCacheMiss = errors.New("cache miss")

const defaultProductTTL = 24 * time.Hour

// ProductCache keeps catalog entries keyed by price ID.
type ProductCache struct {
	client *redisclient.Client
	ttl    time.Duration
}

func NewProductCache(client *redisclient.Client) *ProductCache {
	return &ProductCache{client: client, ttl: defaultProductTTL}
}

func productKey(priceID string) string {
	return fmt.Sprintf("product:%s", priceID)
}

func (c *ProductCache) GetProduct(ctx context.Context, priceID string) (*models.Product, error) {
	data, err := c.client.Get(ctx, productKey(priceID)).Bytes()
	if errors.Is(err, redisclient.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var product models.Product
	if err := json.Unmarshal(data, &product); err != nil {
		return nil, fmt.Errorf("failed to unmarshal product: %w", err)
	}
	return &product, nil
}

// CacheProduct stores a single product and tracks it in the recent list.
func (c *ProductCache) CacheProduct(ctx context.Context, product *models.Product) error {
	productJSON, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("failed to marshal product %s: %w", product.PriceID, err)
	}

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, productKey(product.PriceID), productJSON, c.ttl)
	pipe.LRem(ctx, "products:recent", 0, product.PriceID)
	pipe.LPush(ctx, "products:recent", product.PriceID)
	// Keep only the 100 most recent products
	pipe.LTrim(ctx, "products:recent", 0, 99)
	pipe.Expire(ctx, "products:recent", c.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to execute Redis pipeline for product %s: %w", product.PriceID, err)
	}
	return nil
}

func (c *ProductCache) CacheProducts(ctx context.Context, products []*models.Product) error {
	for _, product := range products {
		if err := c.CacheProduct(ctx, product); err != nil {
			return err
		}
	}
	return nil
}

func (c *ProductCache) RemoveProduct(ctx context.Context, priceID string) error {
	pipe := c.client.TxPipeline()
	pipe.Del(ctx, productKey(priceID))
	pipe.LRem(ctx, "products:recent", 0, priceID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to remove product from Redis cache: %w", err)
	}
	return nil
}

func (c *ProductCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *ProductCache) Close() error {
	return c.client.Close()
}
