package notifier

import (
	"context"
	"time"

	"github.com/RoyceAzure/lab/ordercenter/internal/domain/model"
	"github.com/google/uuid"
)

const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

// OrderEvent 發給下游通知服務(寄信、推播)的訊息內容
type OrderEvent struct {
	EventType  string            `json:"event_type"`
	OrderID    uint              `json:"order_id"`
	OrderCode  string            `json:"order_code"`
	UserID     uuid.UUID         `json:"user_id"`
	OldStatus  model.OrderStatus `json:"old_status,omitempty"`
	NewStatus  model.OrderStatus `json:"new_status"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// IDispatcher 只在交易 commit 之後被呼叫
// 發送失敗由呼叫端記 log 吞掉，不可影響已成立的訂單
type IDispatcher interface {
	DispatchOrderCreated(ctx context.Context, order *model.Order) error
	DispatchOrderStatusChanged(ctx context.Context, order *model.Order, oldStatus model.OrderStatus) error
	Close() error
}
