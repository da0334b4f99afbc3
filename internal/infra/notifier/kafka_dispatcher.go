package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/RoyceAzure/lab/ordercenter/internal/domain/model"
	"github.com/segmentio/kafka-go"
)

// KafkaDispatcher 把訂單事件寫進 kafka，由下游通知服務消費
type KafkaDispatcher struct {
	writer *kafka.Writer
	closed atomic.Bool
}

func NewKafkaDispatcher(brokers []string, topic string) *KafkaDispatcher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		MaxAttempts:  3,
		BatchTimeout: 10 * time.Millisecond,
		Compression:  kafka.Snappy,
	}

	return &KafkaDispatcher{writer: writer}
}

func (d *KafkaDispatcher) DispatchOrderCreated(ctx context.Context, order *model.Order) error {
	return d.dispatch(ctx, OrderEvent{
		EventType:  EventOrderCreated,
		OrderID:    order.OrderID,
		OrderCode:  order.OrderCode,
		UserID:     order.UserID,
		NewStatus:  order.Status,
		OccurredAt: time.Now(),
	})
}

func (d *KafkaDispatcher) DispatchOrderStatusChanged(ctx context.Context, order *model.Order, oldStatus model.OrderStatus) error {
	return d.dispatch(ctx, OrderEvent{
		EventType:  EventOrderStatusChanged,
		OrderID:    order.OrderID,
		OrderCode:  order.OrderCode,
		UserID:     order.UserID,
		OldStatus:  oldStatus,
		NewStatus:  order.Status,
		OccurredAt: time.Now(),
	})
}

func (d *KafkaDispatcher) dispatch(ctx context.Context, event OrderEvent) error {
	if d.closed.Load() {
		return fmt.Errorf("dispatcher is closed")
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	// key 用 order code，同一張訂單的事件落在同一個 partition 保序
	return d.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.OrderCode),
		Value: value,
	})
}

func (d *KafkaDispatcher) Close() error {
	if d.closed.CompareAndSwap(false, true) {
		return d.writer.Close()
	}
	return nil
}

var _ IDispatcher = (*KafkaDispatcher)(nil)
