package main

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/ratul43/book-courier-server/internal/config"
	"github.com/ratul43/book-courier-server/internal/infra/mq"
	"github.com/ratul43/book-courier-server/internal/logger"
	"github.com/ratul43/book-courier-server/internal/service"
)

// 订单事件通知 worker：消费 order_events 队列，给买家发送下单/发货通知。
// 目前通知落日志，后续接邮件网关时替换 notify 实现即可。
func main() {
	logger.Init()
	zap.L().Info("log init success")

	cfg := config.Load()
	mqConn := mq.Init(&cfg.RabbitMQ)

	ch, err := mqConn.Channel()
	if err != nil {
		zap.L().Fatal("failed to open channel", zap.Error(err))
	}
	defer ch.Close()

	if _, err = ch.QueueDeclare(service.OrderEventsQueue, true, false, false, false, nil); err != nil {
		zap.L().Fatal("failed to declare queue", zap.Error(err))
	}

	// 手动确认模式（auto-ack=false）
	msgs, err := ch.Consume(service.OrderEventsQueue, "", false, false, false, false, nil)
	if err != nil {
		zap.L().Fatal("failed to consume", zap.Error(err))
	}

	zap.L().Info("notify worker started, waiting for order events...")

	for d := range msgs {
		var ev service.OrderEvent
		if err := json.Unmarshal(d.Body, &ev); err != nil {
			zap.L().Warn("invalid event", zap.Error(err))
			// 消息格式错误，拒绝并丢弃
			_ = d.Nack(false, false)
			service.GetMonitor().RecordWorkerFailed()
			continue
		}
		notify(&ev)
		_ = d.Ack(false)
		service.GetMonitor().RecordWorkerProcessed()
	}
}

func notify(ev *service.OrderEvent) {
	switch ev.Type {
	case service.EventOrderPaid:
		zap.L().Info("notify: payment confirmed",
			zap.String("order_id", ev.OrderID),
			zap.String("customer", ev.CustomerEmail),
			zap.String("tracking_id", ev.TrackingID))
	case service.EventOrderPlaced:
		zap.L().Info("notify: order placed",
			zap.String("order_id", ev.OrderID),
			zap.String("customer", ev.CustomerEmail),
			zap.String("book", ev.BookName))
	default:
		zap.L().Warn("unknown event type", zap.String("type", ev.Type))
	}
}
