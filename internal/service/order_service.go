package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ratul43/book-courier-server/internal/datamodels/order"
)

// OrderService 订单管理
type OrderService struct {
	repo   order.Repository
	events *EventPublisher
}

// NewOrderService 创建订单服务，events 允许为 nil
func NewOrderService(repo order.Repository, events *EventPublisher) *OrderService {
	return &OrderService{repo: repo, events: events}
}

// Create 用户下单，初始状态 placed/unpaid
func (s *OrderService) Create(ctx context.Context, o *order.Order) error {
	if o.BookID == "" || o.CustomerEmail == "" {
		return fmt.Errorf("%w: bookId and customerEmail are required", ErrInvalidRequest)
	}
	o.Status = order.StatusPlaced
	o.PaymentStatus = order.PaymentUnpaid
	o.TrackingID = ""
	if err := s.repo.Create(ctx, o); err != nil {
		return err
	}
	if s.events != nil {
		ev := &OrderEvent{
			Type:          EventOrderPlaced,
			OrderID:       o.ID,
			BookName:      o.BookName,
			CustomerEmail: o.CustomerEmail,
		}
		if err := s.events.Publish(ctx, ev); err != nil {
			GetMonitor().RecordMQError()
			zap.L().Warn("publish order.placed failed", zap.Error(err))
		}
	}
	return nil
}

// ListRecent 全部订单，最新的在前
func (s *OrderService) ListRecent(ctx context.Context) ([]*order.Order, error) {
	return s.repo.ListRecent(ctx)
}

// GetByEmail 按买家邮箱取最近一笔订单（前端支付前校验用）
func (s *OrderService) GetByEmail(ctx context.Context, email string) (*order.Order, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidRequest)
	}
	o, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return o, err
}

// SetStatus 馆员更新订单状态
func (s *OrderService) SetStatus(ctx context.Context, id, status string) error {
	if id == "" || status == "" {
		return fmt.Errorf("%w: order id and status are required", ErrInvalidRequest)
	}
	switch status {
	case order.StatusPlaced, order.StatusCancelled, order.StatusPaid:
	default:
		return fmt.Errorf("%w: unknown order status %q", ErrInvalidRequest, status)
	}
	rows, err := s.repo.SetStatus(ctx, id, status)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Cancel 取消订单（买家或馆员）
func (s *OrderService) Cancel(ctx context.Context, id string) error {
	return s.SetStatus(ctx, id, order.StatusCancelled)
}
