package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/RoyceAzure/lab/ordercenter/internal/domain/model"
	"github.com/RoyceAzure/lab/ordercenter/internal/infra/repository/db"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrVariantNotFound   = errors.New("product variant not found")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
)

// IStockService 唯一允許變動 variant 庫存的入口
// Debit/Credit 參與呼叫端交易，Adjust 自己開交易
type IStockService interface {
	Debit(ctx context.Context, tx *gorm.DB, variantID uint, quantity int, referenceType string, referenceID *uint, actorID uuid.UUID) error
	Credit(ctx context.Context, tx *gorm.DB, variantID uint, quantity int, referenceType string, referenceID *uint, actorID uuid.UUID) error
	Adjust(ctx context.Context, variantID uint, newQuantity int, reason string, actorID uuid.UUID) (*model.StockAdjustResult, error)
	GetHistory(ctx context.Context, variantID uint, movementType model.MovementType, page, pageSize int) ([]model.StockMovement, int64, error)
}

type StockService struct {
	dao         *db.DbDao
	variantRepo db.IVariantRepository
}

func NewStockService(dao *db.DbDao, variantRepo db.IVariantRepository) *StockService {
	return &StockService{dao: dao, variantRepo: variantRepo}
}

// Debit 扣庫存並寫一筆 out 異動
// 扣減是單一條件式 UPDATE，rows affected = 0 即庫存不足，由呼叫端交易整體回滾
func (s *StockService) Debit(ctx context.Context, tx *gorm.DB, variantID uint, quantity int, referenceType string, referenceID *uint, actorID uuid.UUID) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	rows, err := s.variantRepo.DeductStockTx(ctx, tx, variantID, quantity)
	if err != nil {
		return err
	}
	if rows == 0 {
		// 區分variant不存在與庫存不足，讓caller能回報剩餘數量
		variant, err := s.variantRepo.GetVariantByIDTx(ctx, tx, variantID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: variant %d", ErrVariantNotFound, variantID)
			}
			return err
		}
		return fmt.Errorf("%w: variant %d has %d, requested %d",
			ErrInsufficientStock, variantID, variant.StockQuantity, quantity)
	}

	return s.variantRepo.CreateMovementTx(ctx, tx, &model.StockMovement{
		VariantID:     variantID,
		MovementType:  model.MovementTypeOut,
		Quantity:      quantity,
		ReferenceType: referenceType,
		ReferenceID:   referenceID,
		CreatedBy:     actorID,
	})
}

// Credit 加庫存並寫一筆 in 異動，退貨/取消用，沒有上限
func (s *StockService) Credit(ctx context.Context, tx *gorm.DB, variantID uint, quantity int, referenceType string, referenceID *uint, actorID uuid.UUID) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	rows, err := s.variantRepo.AddStockTx(ctx, tx, variantID, quantity)
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%w: variant %d", ErrVariantNotFound, variantID)
	}

	return s.variantRepo.CreateMovementTx(ctx, tx, &model.StockMovement{
		VariantID:     variantID,
		MovementType:  model.MovementTypeIn,
		Quantity:      quantity,
		ReferenceType: referenceType,
		ReferenceID:   referenceID,
		CreatedBy:     actorID,
	})
}

// Adjust 管理端校正，直接設定成指定數量，異動紀錄帶差值與 old -> new 備註
func (s *StockService) Adjust(ctx context.Context, variantID uint, newQuantity int, reason string, actorID uuid.UUID) (*model.StockAdjustResult, error) {
	if newQuantity < 0 {
		return nil, ErrInvalidQuantity
	}

	var result *model.StockAdjustResult

	err := s.dao.Transaction(func(tx *gorm.DB) error {
		variant, err := s.variantRepo.GetVariantByIDTx(ctx, tx, variantID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: variant %d", ErrVariantNotFound, variantID)
			}
			return err
		}

		current := variant.StockQuantity
		difference := newQuantity - current

		if _, err := s.variantRepo.SetStockTx(ctx, tx, variantID, newQuantity); err != nil {
			return err
		}

		quantity := difference
		if quantity < 0 {
			quantity = -quantity
		}

		err = s.variantRepo.CreateMovementTx(ctx, tx, &model.StockMovement{
			VariantID:     variantID,
			MovementType:  model.MovementTypeAdjust,
			Quantity:      quantity,
			ReferenceType: model.StockRefManualAdjust,
			Note:          fmt.Sprintf("%s (%d -> %d)", reason, current, newQuantity),
			CreatedBy:     actorID,
		})
		if err != nil {
			return err
		}

		result = &model.StockAdjustResult{
			VariantID:        variantID,
			PreviousQuantity: current,
			NewQuantity:      newQuantity,
			Difference:       difference,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (s *StockService) GetHistory(ctx context.Context, variantID uint, movementType model.MovementType, page, pageSize int) ([]model.StockMovement, int64, error) {
	return s.variantRepo.GetMovements(ctx, variantID, movementType, page, pageSize)
}

var _ IStockService = (*StockService)(nil)
