package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/RoyceAzure/lab/ordercenter/internal/domain/model"
	"github.com/RoyceAzure/lab/ordercenter/internal/infra/repository/db"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrCartNotFound        = errors.New("cart not found")
	ErrCartItemNotFound    = errors.New("cart item not found")
	ErrVariantNotAvailable = errors.New("product variant not available")
)

type ICartService interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*model.CartSnapshot, error)
	Validate(ctx context.Context, userID uuid.UUID) (*model.CartValidation, error)
	AddToCart(ctx context.Context, userID uuid.UUID, variantID uint, quantity int) (*model.CartSnapshot, error)
	UpdateItem(ctx context.Context, userID uuid.UUID, cartItemID uint, quantity int) (*model.CartSnapshot, error)
	RemoveItem(ctx context.Context, userID uuid.UUID, cartItemID uint) (*model.CartSnapshot, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type CartService struct {
	cartRepo    db.ICartRepository
	variantRepo db.IVariantRepository
}

func NewCartService(cartRepo db.ICartRepository, variantRepo db.IVariantRepository) *CartService {
	return &CartService{cartRepo: cartRepo, variantRepo: variantRepo}
}

// 沒有購物車就建一個空的，對caller等同冪等讀取
func (s *CartService) getOrCreateCart(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	cart, err := s.cartRepo.GetCartByUserID(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	cart = &model.Cart{UserID: userID}
	if err := s.cartRepo.CreateCart(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// GetCart 帶現價的購物車快照，純讀取
// itemTotal = quantity * 現價, inStock = 現有庫存 >= quantity
func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*model.CartSnapshot, error) {
	cart, err := s.getOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	snapshot := &model.CartSnapshot{
		CartID:   cart.CartID,
		UserID:   cart.UserID,
		Items:    make([]model.CartSnapshotItem, 0, len(cart.Items)),
		Subtotal: decimal.Zero,
	}

	for _, item := range cart.Items {
		itemTotal := item.Variant.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		snapshot.Items = append(snapshot.Items, model.CartSnapshotItem{
			CartItemID:  item.CartItemID,
			VariantID:   item.VariantID,
			ProductName: item.Variant.Product.Name,
			SKU:         item.Variant.SKU,
			Size:        item.Variant.Size,
			Color:       item.Variant.Color,
			Quantity:    item.Quantity,
			UnitPrice:   item.Variant.Price,
			ItemTotal:   itemTotal,
			InStock:     item.Variant.StockQuantity >= item.Quantity,
			Available:   item.Variant.StockQuantity,
		})
		snapshot.Subtotal = snapshot.Subtotal.Add(itemTotal)
		snapshot.TotalItems += item.Quantity
	}

	return snapshot, nil
}

// Validate 結帳前重新檢查每個item，純讀取
func (s *CartService) Validate(ctx context.Context, userID uuid.UUID) (*model.CartValidation, error) {
	cart, err := s.getOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	validation := &model.CartValidation{Valid: true, Issues: []model.CartIssue{}}

	for _, item := range cart.Items {
		variant := item.Variant
		if variant.VariantID == 0 || variant.Status != model.VariantStatusActive {
			validation.Valid = false
			validation.Issues = append(validation.Issues, model.CartIssue{
				VariantID:   item.VariantID,
				ProductName: variant.Product.Name,
				Reason:      "product no longer available",
			})
			continue
		}
		if variant.StockQuantity < item.Quantity {
			validation.Valid = false
			validation.Issues = append(validation.Issues, model.CartIssue{
				VariantID:   item.VariantID,
				ProductName: variant.Product.Name,
				Reason:      "insufficient stock",
				Available:   variant.StockQuantity,
			})
		}
	}

	return validation, nil
}

// AddToCart 加入商品，已存在同variant則合併數量
func (s *CartService) AddToCart(ctx context.Context, userID uuid.UUID, variantID uint, quantity int) (*model.CartSnapshot, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	cart, err := s.getOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	variant, err := s.variantRepo.GetVariantByID(ctx, variantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: variant %d", ErrVariantNotFound, variantID)
		}
		return nil, err
	}
	if variant.Status != model.VariantStatusActive {
		return nil, fmt.Errorf("%w: %s", ErrVariantNotAvailable, variant.Product.Name)
	}

	existing, err := s.cartRepo.GetCartItem(ctx, cart.CartID, variantID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	newQuantity := quantity
	if existing != nil {
		newQuantity += existing.Quantity
	}
	if variant.StockQuantity < newQuantity {
		return nil, fmt.Errorf("%w: %s has %d, requested %d",
			ErrInsufficientStock, variant.Product.Name, variant.StockQuantity, newQuantity)
	}

	if existing != nil {
		if err := s.cartRepo.UpdateCartItemQuantity(ctx, existing.CartItemID, newQuantity); err != nil {
			return nil, err
		}
	} else {
		item := &model.CartItem{CartID: cart.CartID, VariantID: variantID, Quantity: quantity}
		if err := s.cartRepo.CreateCartItem(ctx, item); err != nil {
			return nil, err
		}
	}

	return s.GetCart(ctx, userID)
}

func (s *CartService) UpdateItem(ctx context.Context, userID uuid.UUID, cartItemID uint, quantity int) (*model.CartSnapshot, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	item, err := s.getOwnedItem(ctx, userID, cartItemID)
	if err != nil {
		return nil, err
	}

	variant, err := s.variantRepo.GetVariantByID(ctx, item.VariantID)
	if err != nil {
		return nil, err
	}
	if variant.StockQuantity < quantity {
		return nil, fmt.Errorf("%w: %s has %d, requested %d",
			ErrInsufficientStock, variant.Product.Name, variant.StockQuantity, quantity)
	}

	if err := s.cartRepo.UpdateCartItemQuantity(ctx, cartItemID, quantity); err != nil {
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

func (s *CartService) RemoveItem(ctx context.Context, userID uuid.UUID, cartItemID uint) (*model.CartSnapshot, error) {
	if _, err := s.getOwnedItem(ctx, userID, cartItemID); err != nil {
		return nil, err
	}

	if err := s.cartRepo.DeleteCartItem(ctx, cartItemID); err != nil {
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) error {
	cart, err := s.getOrCreateCart(ctx, userID)
	if err != nil {
		return err
	}
	return s.cartRepo.ClearCartItems(ctx, cart.CartID)
}

// 確認item屬於該user的購物車，避免跨用戶操作
func (s *CartService) getOwnedItem(ctx context.Context, userID uuid.UUID, cartItemID uint) (*model.CartItem, error) {
	cart, err := s.getOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	item, err := s.cartRepo.GetCartItemByID(ctx, cartItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartItemNotFound
		}
		return nil, err
	}
	if item.CartID != cart.CartID {
		return nil, ErrCartItemNotFound
	}
	return item, nil
}

var _ ICartService = (*CartService)(nil)
