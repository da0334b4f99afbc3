package service

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/ordercenter/internal/domain/model"
	"github.com/RoyceAzure/lab/ordercenter/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/ordercenter/internal/infra/repository/redis_repo"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

var ErrProductNotFound = errors.New("product not found")

type IProductService interface {
	GetProductByID(ctx context.Context, productID uint) (*model.Product, error)
	GetProducts(ctx context.Context, page, pageSize int) ([]model.Product, int64, error)
	InvalidateByVariant(ctx context.Context, variantID uint) error
	WarmCache(ctx context.Context) error
}

// ProductService 商品讀取走 cache-aside，詳情快取1小時
type ProductService struct {
	productRepo  db.IProductRepository
	variantRepo  db.IVariantRepository
	productCache redis_repo.IProductCacheRepository
	logger       *zerolog.Logger
}

func NewProductService(
	productRepo db.IProductRepository,
	variantRepo db.IVariantRepository,
	productCache redis_repo.IProductCacheRepository,
	logger *zerolog.Logger,
) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		variantRepo:  variantRepo,
		productCache: productCache,
		logger:       logger,
	}
}

func (s *ProductService) GetProductByID(ctx context.Context, productID uint) (*model.Product, error) {
	cached, err := s.productCache.Get(ctx, productID)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, redis_repo.ErrCacheMiss) {
		// 快取故障時降級回db，不擋讀取
		s.logger.Warn().Err(err).Uint("product_id", productID).Msg("product cache read failed")
	}

	product, err := s.productRepo.GetProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if cerr := s.productCache.Set(ctx, product); cerr != nil {
		s.logger.Warn().Err(cerr).Uint("product_id", productID).Msg("product cache write failed")
	}
	return product, nil
}

func (s *ProductService) GetProducts(ctx context.Context, page, pageSize int) ([]model.Product, int64, error) {
	return s.productRepo.GetProducts(ctx, page, pageSize)
}

// InvalidateByVariant 庫存校正後作廢該variant所屬商品的快取
func (s *ProductService) InvalidateByVariant(ctx context.Context, variantID uint) error {
	variant, err := s.variantRepo.GetVariantByID(ctx, variantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	return s.productCache.Delete(ctx, variant.ProductID)
}

// WarmCache 啟動時預熱上架商品的快取
func (s *ProductService) WarmCache(ctx context.Context) error {
	ids, err := s.productRepo.GetProductIDs(ctx)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)

	for _, id := range ids {
		g.Go(func() error {
			product, err := s.productRepo.GetProductByID(gctx, id)
			if err != nil {
				return err
			}
			return s.productCache.Set(gctx, product)
		})
	}

	return g.Wait()
}

var _ IProductService = (*ProductService)(nil)
