package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/ordercenter/internal/domain/model"
	"github.com/RoyceAzure/lab/ordercenter/internal/infra/notifier"
	"github.com/RoyceAzure/lab/ordercenter/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/ordercenter/internal/pkg/util"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrEmptyCart               = errors.New("cart is empty")
	ErrOrderNotFound           = errors.New("order not found")
	ErrOrderNotCancellable     = errors.New("order cannot be cancelled at this stage")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrInvalidStatus           = errors.New("unknown order status")
	ErrNegativeFinalAmount     = errors.New("final amount cannot be negative")
)

type IOrderService interface {
	CreateOrder(ctx context.Context, userID uuid.UUID, params model.CreateOrderParams) (*model.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID uint, newStatus model.OrderStatus, actorID uuid.UUID, notes string) (*model.Order, error)
	CancelOrder(ctx context.Context, orderID uint, userID uuid.UUID, reason string) (*model.Order, error)
	GetOrderByID(ctx context.Context, orderID uint, userID *uuid.UUID) (*model.Order, error)
	GetOrdersByUserID(ctx context.Context, userID uuid.UUID, status model.OrderStatus, page, pageSize int) ([]model.Order, int64, error)
	GetAllOrders(ctx context.Context, status model.OrderStatus, page, pageSize int) ([]model.Order, int64, error)
	GetStatusHistory(ctx context.Context, orderID uint) ([]model.OrderStatusHistory, error)
}

// OrderService 訂單生命週期的唯一入口
// 訂單寫入、庫存扣補、購物車清空都包在同一個db交易，任何失敗整體回滾
type OrderService struct {
	dao          *db.DbDao
	orderRepo    db.IOrderRepository
	variantRepo  db.IVariantRepository
	cartRepo     db.ICartRepository
	cartService  ICartService
	stockService IStockService
	dispatcher   notifier.IDispatcher
	logger       *zerolog.Logger
}

func NewOrderService(
	dao *db.DbDao,
	orderRepo db.IOrderRepository,
	variantRepo db.IVariantRepository,
	cartRepo db.ICartRepository,
	cartService ICartService,
	stockService IStockService,
	dispatcher notifier.IDispatcher,
	logger *zerolog.Logger,
) *OrderService {
	return &OrderService{
		dao:          dao,
		orderRepo:    orderRepo,
		variantRepo:  variantRepo,
		cartRepo:     cartRepo,
		cartService:  cartService,
		stockService: stockService,
		dispatcher:   dispatcher,
		logger:       logger,
	}
}

/*
CreateOrder 從購物車建立訂單

 1. 讀購物車快照，空的直接擋下
 2. 交易內逐項重讀variant現價、重算金額(不信任快照的舊價格)
 3. 寫order + order items、逐項扣庫存、清空購物車，同一交易
 4. commit後才發通知，發送失敗只記log
*/
func (s *OrderService) CreateOrder(ctx context.Context, userID uuid.UUID, params model.CreateOrderParams) (*model.Order, error) {
	snapshot, err := s.cartService.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(snapshot.Items) == 0 {
		return nil, ErrEmptyCart
	}

	if params.PaymentMethod == "" {
		params.PaymentMethod = model.PaymentMethodCOD
	}

	var order *model.Order

	err = s.dao.Transaction(func(tx *gorm.DB) error {
		totalAmount := decimal.Zero
		orderItems := make([]model.OrderItem, 0, len(snapshot.Items))

		for _, item := range snapshot.Items {
			variant, err := s.variantRepo.GetVariantByIDTx(ctx, tx, item.VariantID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: variant %d", ErrVariantNotFound, item.VariantID)
				}
				return err
			}
			if variant.Status != model.VariantStatusActive {
				return fmt.Errorf("%w: %s", ErrVariantNotAvailable, variant.Product.Name)
			}
			// 先行檢查只是為了回報友善的商品名稱，真正的防超賣在Debit的條件式UPDATE
			if variant.StockQuantity < item.Quantity {
				return fmt.Errorf("%w: %s has %d, requested %d",
					ErrInsufficientStock, variant.Product.Name, variant.StockQuantity, item.Quantity)
			}

			subtotal := variant.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
			totalAmount = totalAmount.Add(subtotal)
			orderItems = append(orderItems, model.OrderItem{
				VariantID: item.VariantID,
				Quantity:  item.Quantity,
				UnitPrice: variant.Price,
				Subtotal:  subtotal,
			})
		}

		finalAmount := totalAmount.Sub(params.DiscountAmount).Add(params.ShippingFee)
		if finalAmount.IsNegative() {
			return ErrNegativeFinalAmount
		}

		order = &model.Order{
			UserID:          userID,
			OrderCode:       util.GenerateOrderCode(),
			TotalAmount:     totalAmount,
			DiscountAmount:  params.DiscountAmount,
			ShippingFee:     params.ShippingFee,
			FinalAmount:     finalAmount,
			Status:          model.OrderStatusPending,
			PaymentMethod:   params.PaymentMethod,
			PaymentStatus:   model.PaymentStatusUnpaid,
			ShippingName:    params.ShippingName,
			ShippingPhone:   util.NormalizePhoneNumber(params.ShippingPhone),
			ShippingAddress: params.ShippingAddress,
			Notes:           params.Notes,
			PromotionCode:   params.PromotionCode,
			OrderItems:      orderItems,
		}
		if err := s.orderRepo.CreateOrderTx(ctx, tx, order); err != nil {
			return err
		}

		for _, item := range orderItems {
			orderID := order.OrderID
			if err := s.stockService.Debit(ctx, tx, item.VariantID, item.Quantity,
				model.StockRefOrder, &orderID, userID); err != nil {
				return err
			}
		}

		return s.cartRepo.ClearCartItemsTx(ctx, tx, snapshot.CartID)
	})
	if err != nil {
		return nil, err
	}

	// commit後的副作用，失敗不影響已成立的訂單
	if derr := s.dispatcher.DispatchOrderCreated(ctx, order); derr != nil {
		s.logger.Error().Err(derr).
			Str("order_code", order.OrderCode).
			Msg("failed to dispatch order created notification")
	}

	return s.orderRepo.GetOrderByID(ctx, order.OrderID)
}

/*
UpdateOrderStatus 狀態轉移

轉移合法性查表，milestone timestamp 只在第一次到達該狀態時寫入
delivered 同時標記已付款，cancelled 逐項補回庫存並記錄原因
每次轉移都寫一筆 status history
*/
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID uint, newStatus model.OrderStatus, actorID uuid.UUID, notes string) (*model.Order, error) {
	if !newStatus.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, newStatus)
	}

	var oldStatus model.OrderStatus

	err := s.dao.Transaction(func(tx *gorm.DB) error {
		order, err := s.orderRepo.GetOrderByIDTx(ctx, tx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		if !order.Status.CanTransitionTo(newStatus) {
			return fmt.Errorf("%w: from %s to %s", ErrInvalidStatusTransition, order.Status, newStatus)
		}
		oldStatus = order.Status

		now := time.Now()
		updates := map[string]interface{}{
			"status":       newStatus,
			"processed_by": actorID,
		}

		switch newStatus {
		case model.OrderStatusConfirmed:
			if order.ConfirmedAt == nil {
				updates["confirmed_at"] = now
			}
		case model.OrderStatusShipped:
			if order.ShippedAt == nil {
				updates["shipped_at"] = now
			}
		case model.OrderStatusDelivered:
			if order.DeliveredAt == nil {
				updates["delivered_at"] = now
			}
			updates["payment_status"] = model.PaymentStatusPaid
		case model.OrderStatusCancelled:
			if order.CancelledAt == nil {
				updates["cancelled_at"] = now
			}
			updates["cancel_reason"] = notes
		}

		if err := s.orderRepo.UpdateOrderTx(ctx, tx, orderID, updates); err != nil {
			return err
		}

		if newStatus == model.OrderStatusCancelled {
			for _, item := range order.OrderItems {
				id := orderID
				if err := s.stockService.Credit(ctx, tx, item.VariantID, item.Quantity,
					model.StockRefOrderCancel, &id, actorID); err != nil {
					return err
				}
			}
		}

		return s.orderRepo.CreateStatusHistoryTx(ctx, tx, &model.OrderStatusHistory{
			OrderID:   orderID,
			OldStatus: oldStatus,
			NewStatus: newStatus,
			Notes:     notes,
			ChangedBy: actorID,
		})
	})
	if err != nil {
		return nil, err
	}

	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if derr := s.dispatcher.DispatchOrderStatusChanged(ctx, order, oldStatus); derr != nil {
		s.logger.Error().Err(derr).
			Str("order_code", order.OrderCode).
			Str("new_status", string(newStatus)).
			Msg("failed to dispatch status changed notification")
	}

	return order, nil
}

// CancelOrder 顧客端取消，先驗擁有者與可取消狀態再走UpdateOrderStatus
func (s *OrderService) CancelOrder(ctx context.Context, orderID uint, userID uuid.UUID, reason string) (*model.Order, error) {
	order, err := s.orderRepo.GetOrderByIDAndUser(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if !order.Status.Cancellable() {
		return nil, fmt.Errorf("%w: status %s", ErrOrderNotCancellable, order.Status)
	}

	return s.UpdateOrderStatus(ctx, orderID, model.OrderStatusCancelled, userID, reason)
}

// GetOrderByID userID 非nil時限定擁有者
func (s *OrderService) GetOrderByID(ctx context.Context, orderID uint, userID *uuid.UUID) (*model.Order, error) {
	var (
		order *model.Order
		err   error
	)
	if userID != nil {
		order, err = s.orderRepo.GetOrderByIDAndUser(ctx, orderID, *userID)
	} else {
		order, err = s.orderRepo.GetOrderByID(ctx, orderID)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (s *OrderService) GetOrdersByUserID(ctx context.Context, userID uuid.UUID, status model.OrderStatus, page, pageSize int) ([]model.Order, int64, error) {
	return s.orderRepo.GetOrdersByUserID(ctx, userID, status, page, pageSize)
}

func (s *OrderService) GetAllOrders(ctx context.Context, status model.OrderStatus, page, pageSize int) ([]model.Order, int64, error) {
	return s.orderRepo.GetAllOrders(ctx, status, page, pageSize)
}

func (s *OrderService) GetStatusHistory(ctx context.Context, orderID uint) ([]model.OrderStatusHistory, error) {
	return s.orderRepo.GetStatusHistory(ctx, orderID)
}

var _ IOrderService = (*OrderService)(nil)
