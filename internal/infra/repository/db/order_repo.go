package db

import (
	"context"

	"github.com/RoyceAzure/lab/ordercenter/internal/domain/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type IOrderRepository interface {
	CreateOrderTx(ctx context.Context, tx *gorm.DB, order *model.Order) error
	GetOrderByID(ctx context.Context, orderID uint) (*model.Order, error)
	GetOrderByIDTx(ctx context.Context, tx *gorm.DB, orderID uint) (*model.Order, error)
	GetOrderByIDAndUser(ctx context.Context, orderID uint, userID uuid.UUID) (*model.Order, error)
	GetOrdersByUserID(ctx context.Context, userID uuid.UUID, status model.OrderStatus, page, pageSize int) ([]model.Order, int64, error)
	GetAllOrders(ctx context.Context, status model.OrderStatus, page, pageSize int) ([]model.Order, int64, error)
	UpdateOrderTx(ctx context.Context, tx *gorm.DB, orderID uint, updates map[string]interface{}) error
	CreateStatusHistoryTx(ctx context.Context, tx *gorm.DB, history *model.OrderStatusHistory) error
	GetStatusHistory(ctx context.Context, orderID uint) ([]model.OrderStatusHistory, error)
}

type OrderRepo struct {
	db *DbDao
}

func NewOrderRepo(db *DbDao) *OrderRepo {
	return &OrderRepo{db: db}
}

// Create - 創建訂單，OrderItems 由 gorm association 一起寫入
func (r *OrderRepo) CreateOrderTx(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	return tx.WithContext(ctx).Create(order).Error
}

// Read - 根據ID查詢訂單
func (r *OrderRepo) GetOrderByID(ctx context.Context, orderID uint) (*model.Order, error) {
	return r.GetOrderByIDTx(ctx, r.db.DB, orderID)
}

func (r *OrderRepo) GetOrderByIDTx(ctx context.Context, tx *gorm.DB, orderID uint) (*model.Order, error) {
	var order model.Order
	err := tx.WithContext(ctx).
		Preload("OrderItems").
		Preload("OrderItems.Variant").
		Preload("OrderItems.Variant.Product").
		First(&order, "order_id = ?", orderID).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Read - 根據ID查詢訂單，限定擁有者
func (r *OrderRepo) GetOrderByIDAndUser(ctx context.Context, orderID uint, userID uuid.UUID) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("OrderItems").
		First(&order, "order_id = ? AND user_id = ?", orderID, userID).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// 分頁查詢用戶訂單，status 為空字串時不過濾
func (r *OrderRepo) GetOrdersByUserID(ctx context.Context, userID uuid.UUID, status model.OrderStatus, page, pageSize int) ([]model.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Order{}).Where("user_id = ?", userID)
	return r.paginateOrders(query, status, page, pageSize)
}

// 分頁查詢所有訂單，給 staff 後台用
func (r *OrderRepo) GetAllOrders(ctx context.Context, status model.OrderStatus, page, pageSize int) ([]model.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Order{})
	return r.paginateOrders(query, status, page, pageSize)
}

func (r *OrderRepo) paginateOrders(query *gorm.DB, status model.OrderStatus, page, pageSize int) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	if status != "" {
		query = query.Where("status = ?", status)
	}

	query.Count(&total)

	offset := (page - 1) * pageSize
	err := query.Preload("OrderItems").
		Order("created_at DESC").
		Offset(offset).Limit(pageSize).
		Find(&orders).Error

	return orders, total, err
}

// Update - 狀態轉移專用，milestone timestamp / processed_by 一起更新
func (r *OrderRepo) UpdateOrderTx(ctx context.Context, tx *gorm.DB, orderID uint, updates map[string]interface{}) error {
	return tx.WithContext(ctx).Model(&model.Order{}).
		Where("order_id = ?", orderID).
		Updates(updates).Error
}

func (r *OrderRepo) CreateStatusHistoryTx(ctx context.Context, tx *gorm.DB, history *model.OrderStatusHistory) error {
	return tx.WithContext(ctx).Create(history).Error
}

func (r *OrderRepo) GetStatusHistory(ctx context.Context, orderID uint) ([]model.OrderStatusHistory, error) {
	var histories []model.OrderStatusHistory
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("history_id ASC").
		Find(&histories).Error
	return histories, err
}

var _ IOrderRepository = (*OrderRepo)(nil)
