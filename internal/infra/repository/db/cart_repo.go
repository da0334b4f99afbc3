package db

import (
	"context"

	"github.com/RoyceAzure/lab/ordercenter/internal/domain/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ICartRepository interface {
	CreateCart(ctx context.Context, cart *model.Cart) error
	GetCartByUserID(ctx context.Context, userID uuid.UUID) (*model.Cart, error)
	GetCartItemByID(ctx context.Context, cartItemID uint) (*model.CartItem, error)
	GetCartItem(ctx context.Context, cartID, variantID uint) (*model.CartItem, error)
	CreateCartItem(ctx context.Context, item *model.CartItem) error
	UpdateCartItemQuantity(ctx context.Context, cartItemID uint, quantity int) error
	DeleteCartItem(ctx context.Context, cartItemID uint) error
	ClearCartItems(ctx context.Context, cartID uint) error
	ClearCartItemsTx(ctx context.Context, tx *gorm.DB, cartID uint) error
}

type CartRepo struct {
	db *DbDao
}

func NewCartRepo(db *DbDao) *CartRepo {
	return &CartRepo{db: db}
}

func (r *CartRepo) CreateCart(ctx context.Context, cart *model.Cart) error {
	return r.db.WithContext(ctx).Create(cart).Error
}

// Read - 取用戶購物車，含 items 與商品現價
func (r *CartRepo) GetCartByUserID(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	var cart model.Cart
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Variant").
		Preload("Items.Variant.Product").
		First(&cart, "user_id = ?", userID).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *CartRepo) GetCartItemByID(ctx context.Context, cartItemID uint) (*model.CartItem, error) {
	var item model.CartItem
	err := r.db.WithContext(ctx).First(&item, "cart_item_id = ?", cartItemID).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *CartRepo) GetCartItem(ctx context.Context, cartID, variantID uint) (*model.CartItem, error) {
	var item model.CartItem
	err := r.db.WithContext(ctx).
		First(&item, "cart_id = ? AND variant_id = ?", cartID, variantID).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *CartRepo) CreateCartItem(ctx context.Context, item *model.CartItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *CartRepo) UpdateCartItemQuantity(ctx context.Context, cartItemID uint, quantity int) error {
	return r.db.WithContext(ctx).Model(&model.CartItem{}).
		Where("cart_item_id = ?", cartItemID).
		Update("quantity", quantity).Error
}

func (r *CartRepo) DeleteCartItem(ctx context.Context, cartItemID uint) error {
	return r.db.WithContext(ctx).Unscoped().
		Where("cart_item_id = ?", cartItemID).
		Delete(&model.CartItem{}).Error
}

func (r *CartRepo) ClearCartItems(ctx context.Context, cartID uint) error {
	return r.ClearCartItemsTx(ctx, r.db.DB, cartID)
}

// 結帳成功時在同一交易內清空，cart 本身保留
func (r *CartRepo) ClearCartItemsTx(ctx context.Context, tx *gorm.DB, cartID uint) error {
	return tx.WithContext(ctx).Unscoped().
		Where("cart_id = ?", cartID).
		Delete(&model.CartItem{}).Error
}

var _ ICartRepository = (*CartRepo)(nil)
