package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// 订单事件队列
const OrderEventsQueue = "order_events"

// 事件类型
const (
	EventOrderPlaced = "order.placed"
	EventOrderPaid   = "order.paid"
)

// OrderEvent 投递给通知 worker 的订单事件
type OrderEvent struct {
	Type          string    `json:"type"`
	OrderID       string    `json:"order_id"`
	BookName      string    `json:"book_name"`
	CustomerEmail string    `json:"customer_email"`
	TrackingID    string    `json:"tracking_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// EventPublisher 订单事件发布器，确认链路上为尽力而为：
// MQ 故障只计入监控，不影响支付结果。
type EventPublisher struct {
	conn *amqp.Connection
}

// NewEventPublisher 创建发布器，conn 可为 nil（测试/未部署 MQ 时退化为 no-op）
func NewEventPublisher(conn *amqp.Connection) *EventPublisher {
	return &EventPublisher{conn: conn}
}

// Publish 发布事件到持久化队列
func (p *EventPublisher) Publish(ctx context.Context, ev *OrderEvent) error {
	if p.conn == nil {
		return nil
	}
	ch, err := p.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if _, err = ch.QueueDeclare(OrderEventsQueue, true, false, false, false, nil); err != nil {
		return err
	}

	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now()
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	return ch.PublishWithContext(
		ctx,
		"",
		OrderEventsQueue,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}
