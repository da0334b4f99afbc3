package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// 狀態轉移表，不在表內的轉移一律拒絕
// shipped 之後不可取消，delivered / cancelled 為終態
var orderStatusTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:  {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
	OrderStatusDelivered:  {},
	OrderStatusCancelled:  {},
}

func (s OrderStatus) IsValid() bool {
	_, ok := orderStatusTransitions[s]
	return ok
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderStatusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Cancellable 顧客端是否還能取消
func (s OrderStatus) Cancellable() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing:
		return true
	default:
		return false
	}
}

type PaymentMethod string

const (
	PaymentMethodCOD          PaymentMethod = "COD"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodVNPay        PaymentMethod = "VNPAY"
	PaymentMethodMomo         PaymentMethod = "MOMO"
	PaymentMethodZaloPay      PaymentMethod = "ZALOPAY"
	PaymentMethodCreditCard   PaymentMethod = "CREDIT_CARD"
)

type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "unpaid"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Order 一次結帳
// 金額不變式: FinalAmount = TotalAmount - DiscountAmount + ShippingFee，不可為負
// 收件資訊為下單當下的快照，不跟著 user profile 變動
type Order struct {
	OrderID         uint            `gorm:"primaryKey"`
	UserID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	OrderCode       string          `gorm:"not null;type:varchar(20);unique"`
	TotalAmount     decimal.Decimal `gorm:"not null;type:decimal(10,2)"`
	DiscountAmount  decimal.Decimal `gorm:"not null;type:decimal(10,2);default:0"`
	ShippingFee     decimal.Decimal `gorm:"not null;type:decimal(10,2);default:0"`
	FinalAmount     decimal.Decimal `gorm:"not null;type:decimal(10,2)"`
	Status          OrderStatus     `gorm:"not null;type:varchar(20);default:pending;index"`
	PaymentMethod   PaymentMethod   `gorm:"not null;type:varchar(20);default:COD"`
	PaymentStatus   PaymentStatus   `gorm:"not null;type:varchar(20);default:unpaid"`
	ShippingName    string          `gorm:"not null;type:varchar(100)"`
	ShippingPhone   string          `gorm:"not null;type:varchar(20)"`
	ShippingAddress string          `gorm:"not null;type:varchar(500)"`
	Notes           string          `gorm:"type:varchar(500)"`
	PromotionCode   string          `gorm:"type:varchar(50)"`
	CancelReason    string          `gorm:"type:varchar(500)"`
	ConfirmedAt     *time.Time
	ShippedAt       *time.Time
	DeliveredAt     *time.Time
	CancelledAt     *time.Time
	ProcessedBy     *uuid.UUID  `gorm:"type:uuid"`
	OrderItems      []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	BaseModel
}

// OrderItem 與 Order 同一交易內建立，建立後不再變動
// UnitPrice 為下單當下價格，與 variant 現價脫鉤
type OrderItem struct {
	OrderID   uint            `gorm:"primaryKey"`
	VariantID uint            `gorm:"primaryKey"`
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"not null;type:decimal(10,2)"`
	Subtotal  decimal.Decimal `gorm:"not null;type:decimal(10,2)"`
	Variant   ProductVariant  `gorm:"foreignKey:VariantID;references:VariantID"`
	BaseModel
}

// OrderStatusHistory 狀態轉移紀錄，append-only
type OrderStatusHistory struct {
	HistoryID uint        `gorm:"primaryKey"`
	OrderID   uint        `gorm:"not null;index"`
	OldStatus OrderStatus `gorm:"not null;type:varchar(20)"`
	NewStatus OrderStatus `gorm:"not null;type:varchar(20)"`
	Notes     string      `gorm:"type:varchar(500)"`
	ChangedBy uuid.UUID   `gorm:"type:uuid;not null"`
	CreatedAt time.Time   `gorm:"not null;autoCreateTime"`
}

// CreateOrderParams 建立訂單的輸入
type CreateOrderParams struct {
	ShippingName    string
	ShippingPhone   string
	ShippingAddress string
	PaymentMethod   PaymentMethod
	ShippingFee     decimal.Decimal
	DiscountAmount  decimal.Decimal
	Notes           string
	PromotionCode   string
}
