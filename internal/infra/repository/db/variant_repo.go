package db

import (
	"context"

	"github.com/RoyceAzure/lab/ordercenter/internal/domain/model"
	"gorm.io/gorm"
)

type IVariantRepository interface {
	CreateVariant(ctx context.Context, variant *model.ProductVariant) error
	GetVariantByID(ctx context.Context, variantID uint) (*model.ProductVariant, error)
	GetVariantByIDTx(ctx context.Context, tx *gorm.DB, variantID uint) (*model.ProductVariant, error)
	DeductStockTx(ctx context.Context, tx *gorm.DB, variantID uint, quantity int) (int64, error)
	AddStockTx(ctx context.Context, tx *gorm.DB, variantID uint, quantity int) (int64, error)
	SetStockTx(ctx context.Context, tx *gorm.DB, variantID uint, quantity int) (int64, error)
	CreateMovementTx(ctx context.Context, tx *gorm.DB, movement *model.StockMovement) error
	GetMovements(ctx context.Context, variantID uint, movementType model.MovementType, page, pageSize int) ([]model.StockMovement, int64, error)
}

// 庫存寫入只走這個repo，且一定在呼叫端的交易內
type VariantRepo struct {
	db *DbDao
}

func NewVariantRepo(db *DbDao) *VariantRepo {
	return &VariantRepo{db: db}
}

func (r *VariantRepo) CreateVariant(ctx context.Context, variant *model.ProductVariant) error {
	return r.db.WithContext(ctx).Create(variant).Error
}

// Read - 根據ID查詢variant，含商品資訊
func (r *VariantRepo) GetVariantByID(ctx context.Context, variantID uint) (*model.ProductVariant, error) {
	return r.GetVariantByIDTx(ctx, r.db.DB, variantID)
}

func (r *VariantRepo) GetVariantByIDTx(ctx context.Context, tx *gorm.DB, variantID uint) (*model.ProductVariant, error) {
	var variant model.ProductVariant
	err := tx.WithContext(ctx).Preload("Product").First(&variant, "variant_id = ?", variantID).Error
	if err != nil {
		return nil, err
	}
	return &variant, nil
}

// DeductStockTx 條件式扣庫存
// 單一 UPDATE 內檢查 stock_quantity >= quantity，rows affected = 0 代表庫存不足或variant不存在
// 併發下同時搶最後一件時只會有一邊成功
func (r *VariantRepo) DeductStockTx(ctx context.Context, tx *gorm.DB, variantID uint, quantity int) (int64, error) {
	result := tx.WithContext(ctx).Model(&model.ProductVariant{}).
		Where("variant_id = ? AND stock_quantity >= ?", variantID, quantity).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", quantity))
	return result.RowsAffected, result.Error
}

func (r *VariantRepo) AddStockTx(ctx context.Context, tx *gorm.DB, variantID uint, quantity int) (int64, error) {
	result := tx.WithContext(ctx).Model(&model.ProductVariant{}).
		Where("variant_id = ?", variantID).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", quantity))
	return result.RowsAffected, result.Error
}

func (r *VariantRepo) SetStockTx(ctx context.Context, tx *gorm.DB, variantID uint, quantity int) (int64, error) {
	result := tx.WithContext(ctx).Model(&model.ProductVariant{}).
		Where("variant_id = ?", variantID).
		UpdateColumn("stock_quantity", quantity)
	return result.RowsAffected, result.Error
}

func (r *VariantRepo) CreateMovementTx(ctx context.Context, tx *gorm.DB, movement *model.StockMovement) error {
	return tx.WithContext(ctx).Create(movement).Error
}

// 分頁查詢異動紀錄，movementType 為空字串時不過濾
func (r *VariantRepo) GetMovements(ctx context.Context, variantID uint, movementType model.MovementType, page, pageSize int) ([]model.StockMovement, int64, error) {
	var movements []model.StockMovement
	var total int64

	query := r.db.WithContext(ctx).Model(&model.StockMovement{}).Where("variant_id = ?", variantID)
	if movementType != "" {
		query = query.Where("movement_type = ?", movementType)
	}

	query.Count(&total)

	offset := (page - 1) * pageSize
	err := query.Order("movement_id ASC").Offset(offset).Limit(pageSize).Find(&movements).Error

	return movements, total, err
}

var _ IVariantRepository = (*VariantRepo)(nil)
