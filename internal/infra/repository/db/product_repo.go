package db

import (
	"context"

	"github.com/RoyceAzure/lab/ordercenter/internal/domain/model"
)

type IProductRepository interface {
	CreateProduct(ctx context.Context, product *model.Product) error
	GetProductByID(ctx context.Context, productID uint) (*model.Product, error)
	GetProductByCode(ctx context.Context, code string) (*model.Product, error)
	GetProducts(ctx context.Context, page, pageSize int) ([]model.Product, int64, error)
	GetProductIDs(ctx context.Context) ([]uint, error)
}

type ProductRepo struct {
	db *DbDao
}

func NewProductRepo(db *DbDao) *ProductRepo {
	return &ProductRepo{db: db}
}

func (r *ProductRepo) CreateProduct(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *ProductRepo) GetProductByID(ctx context.Context, productID uint) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Preload("Variants").
		First(&product, "product_id = ?", productID).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *ProductRepo) GetProductByCode(ctx context.Context, code string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Preload("Variants").
		First(&product, "code = ?", code).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// 分頁查詢上架商品
func (r *ProductRepo) GetProducts(ctx context.Context, page, pageSize int) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("status = ?", model.ProductStatusActive)

	query.Count(&total)

	offset := (page - 1) * pageSize
	err := query.Preload("Variants").
		Order("product_id ASC").
		Offset(offset).Limit(pageSize).
		Find(&products).Error

	return products, total, err
}

// 給快取預熱用
func (r *ProductRepo) GetProductIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("status = ?", model.ProductStatusActive).
		Pluck("product_id", &ids).Error
	return ids, err
}

var _ IProductRepository = (*ProductRepo)(nil)
