package redis_repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/ordercenter/internal/domain/model"
	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("cache miss")

// 商品詳情快取，TTL 1小時
const ProductCacheTTL = time.Hour

type IProductCacheRepository interface {
	Get(ctx context.Context, productID uint) (*model.Product, error)
	Set(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, productID uint) error
}

type ProductCacheRepo struct {
	cache *redis.Client
}

func NewProductCacheRepo(cache *redis.Client) *ProductCacheRepo {
	return &ProductCacheRepo{cache: cache}
}

func generateProductKey(productID uint) string {
	return fmt.Sprintf("product:%d", productID)
}

func (r *ProductCacheRepo) Get(ctx context.Context, productID uint) (*model.Product, error) {
	data, err := r.cache.Get(ctx, generateProductKey(productID)).Bytes()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product cache: %w", err)
	}

	var product model.Product
	if err := json.Unmarshal(data, &product); err != nil {
		return nil, fmt.Errorf("invalid product cache for %d: %w", productID, err)
	}
	return &product, nil
}

func (r *ProductCacheRepo) Set(ctx context.Context, product *model.Product) error {
	data, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("failed to marshal product %d: %w", product.ProductID, err)
	}

	if err := r.cache.Set(ctx, generateProductKey(product.ProductID), data, ProductCacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to set product cache: %w", err)
	}
	return nil
}

// 庫存校正後作廢快取，下次讀取回源
func (r *ProductCacheRepo) Delete(ctx context.Context, productID uint) error {
	return r.cache.Del(ctx, generateProductKey(productID)).Err()
}

var _ IProductCacheRepository = (*ProductCacheRepo)(nil)
