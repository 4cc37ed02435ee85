package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	radix "github.com/mediocregopher/radix/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ratul43/book-courier-server/internal/datamodels/order"
	"github.com/ratul43/book-courier-server/internal/datamodels/payment"
)

const (
	// 已确认 session 的缓存，重复确认（刷新成功页等）不再回源网关和数据库
	redisConfirmedSessionKey = "payment:confirmed:%s" // sessionID
	confirmedCacheTTLSeconds = 86400
)

// CheckoutResult 创建收银台会话的结果
type CheckoutResult struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// ConfirmResult 支付确认结果
// 重复确认返回 Message=="already exists" 和首次生成的运单号；
// 网关侧未完成支付时 Pending 为 true，不产生任何写入。
type ConfirmResult struct {
	Success       bool             `json:"success"`
	Pending       bool             `json:"pending,omitempty"`
	Message       string           `json:"message,omitempty"`
	TransactionID string           `json:"transactionId,omitempty"`
	TrackingID    string           `json:"trackingId,omitempty"`
	Payment       *payment.Payment `json:"paymentInfo,omitempty"`
}

// confirmedSession Redis 缓存结构
type confirmedSession struct {
	TransactionID string `json:"transactionId"`
	TrackingID    string `json:"trackingId"`
}

// PaymentService 收银台会话创建与支付确认（幂等入账）
type PaymentService struct {
	provider    CheckoutProvider
	orderRepo   order.Repository
	paymentRepo payment.Repository
	redis       radix.Client
	events      *EventPublisher
}

// NewPaymentService 创建支付服务，redis 与 events 允许为 nil
func NewPaymentService(
	provider CheckoutProvider,
	orderRepo order.Repository,
	paymentRepo payment.Repository,
	redis radix.Client,
	events *EventPublisher,
) *PaymentService {
	return &PaymentService{
		provider:    provider,
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		redis:       redis,
		events:      events,
	}
}

// CreateCheckoutSession 创建托管收银台会话并返回跳转地址
func (s *PaymentService) CreateCheckoutSession(ctx context.Context, req *CheckoutRequest) (*CheckoutResult, error) {
	if req == nil || req.OrderID == "" || req.BookName == "" || req.CustomerEmail == "" || req.TotalCost <= 0 {
		return nil, fmt.Errorf("%w: missing checkout fields", ErrInvalidRequest)
	}
	sess, err := s.provider.CreateSession(ctx, req)
	if err != nil {
		return nil, err
	}
	GetMonitor().RecordCheckoutSession()
	return &CheckoutResult{SessionID: sess.ID, URL: sess.URL}, nil
}

// ConfirmPayment 确认支付并恰好一次入账
//
// 幂等键是网关侧的 transaction id（payment_intent）：成功页刷新、网络重试都会
// 带着同一个 session 再次调用本方法。账本 transaction_id 上的唯一索引兜底
// 并发窗口：两个并发请求都通过存在性检查时，后写的一方会拿到唯一键冲突，
// 此时按重复请求处理（查回已有流水返回），而不是报错。
// 订单更新本身是幂等的字段赋值，不需要同样的保护。
func (s *PaymentService) ConfirmPayment(ctx context.Context, sessionID string) (*ConfirmResult, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session_id is required", ErrInvalidRequest)
	}
	GetMonitor().RecordConfirmRequest()

	// 0. Redis 快路径：已确认过的 session 直接返回
	if cached, ok := s.cachedConfirmed(sessionID); ok {
		GetMonitor().RecordConfirmDuplicate()
		return s.replayResult(ctx, cached.TransactionID)
	}

	// 1. 回源网关拿 session 状态
	sess, err := s.provider.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	transactionID := sess.PaymentIntentID

	// 2. 账本存在性检查：命中即重复确认，不再写任何东西
	existing, err := s.paymentRepo.GetByTransactionID(ctx, transactionID)
	if err == nil {
		GetMonitor().RecordConfirmDuplicate()
		s.cacheConfirmed(sessionID, existing)
		return duplicateResult(existing), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		GetMonitor().RecordDBError()
		return nil, err
	}

	// 3. 网关侧未完成支付：不入账、不动订单
	if sess.PaymentStatus != SessionPaid {
		GetMonitor().RecordConfirmPending()
		return &ConfirmResult{
			Pending: true,
			Message: "payment not completed",
		}, nil
	}

	// 4. 首次确认：生成运单号，订单置为已支付，插入账本
	trackingID, err := GenerateTrackingID()
	if err != nil {
		return nil, err
	}

	orderID := sess.Metadata["bookId"] // 历史字段名，存放订单 id
	rows, err := s.orderRepo.MarkPaid(ctx, orderID, trackingID)
	if err != nil {
		GetMonitor().RecordDBError()
		return nil, err
	}
	if rows == 0 {
		zap.L().Warn("confirm: no order matched session metadata",
			zap.String("session_id", sessionID),
			zap.String("order_id", orderID))
	}

	entry := &payment.Payment{
		TransactionID: transactionID,
		SessionID:     sessionID,
		OrderID:       orderID,
		BookName:      sess.Metadata["bookName"],
		Amount:        sess.AmountTotal,
		Currency:      sess.Currency,
		CustomerEmail: sess.CustomerEmail,
		TrackingID:    trackingID,
		PaidAt:        time.Now(),
	}
	if err := s.paymentRepo.Create(ctx, entry); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// 并发确认输掉了插入竞争，按重复请求返回已入账的那份；
			// 自己刚才写进订单的运单号作废，改回账本里的那一个
			GetMonitor().RecordConfirmDuplicate()
			res, rerr := s.replayResult(ctx, transactionID)
			if rerr == nil {
				if _, uerr := s.orderRepo.MarkPaid(ctx, orderID, res.TrackingID); uerr != nil {
					GetMonitor().RecordDBError()
				}
			}
			return res, rerr
		}
		GetMonitor().RecordDBError()
		return nil, err
	}

	GetMonitor().RecordConfirmSuccess()
	s.cacheConfirmed(sessionID, entry)
	s.publishPaid(ctx, entry)

	return &ConfirmResult{
		Success:       true,
		TransactionID: transactionID,
		TrackingID:    trackingID,
		Payment:       entry,
	}, nil
}

// ListPayments 账本流水，最近的在前
func (s *PaymentService) ListPayments(ctx context.Context) ([]*payment.Payment, error) {
	return s.paymentRepo.ListRecent(ctx)
}

// replayResult 按 transaction id 查回已入账流水并包装成重复确认结果
func (s *PaymentService) replayResult(ctx context.Context, transactionID string) (*ConfirmResult, error) {
	existing, err := s.paymentRepo.GetByTransactionID(ctx, transactionID)
	if err != nil {
		GetMonitor().RecordDBError()
		return nil, err
	}
	return duplicateResult(existing), nil
}

func duplicateResult(p *payment.Payment) *ConfirmResult {
	return &ConfirmResult{
		Success:       true,
		Message:       "already exists",
		TransactionID: p.TransactionID,
		TrackingID:    p.TrackingID,
		Payment:       p,
	}
}

func (s *PaymentService) cachedConfirmed(sessionID string) (*confirmedSession, bool) {
	if s.redis == nil {
		return nil, false
	}
	key := fmt.Sprintf(redisConfirmedSessionKey, sessionID)
	var raw string
	if err := s.redis.Do(radix.Cmd(&raw, "GET", key)); err != nil {
		GetMonitor().RecordRedisError()
		return nil, false
	}
	if raw == "" {
		return nil, false
	}
	var cached confirmedSession
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		_ = s.redis.Do(radix.Cmd(nil, "DEL", key))
		return nil, false
	}
	return &cached, true
}

func (s *PaymentService) cacheConfirmed(sessionID string, p *payment.Payment) {
	if s.redis == nil {
		return
	}
	key := fmt.Sprintf(redisConfirmedSessionKey, sessionID)
	body, _ := json.Marshal(&confirmedSession{
		TransactionID: p.TransactionID,
		TrackingID:    p.TrackingID,
	})
	if err := s.redis.Do(radix.FlatCmd(nil, "SETEX", key, confirmedCacheTTLSeconds, body)); err != nil {
		GetMonitor().RecordRedisError()
	}
}

// publishPaid 发布 order.paid 事件，失败只记监控
func (s *PaymentService) publishPaid(ctx context.Context, p *payment.Payment) {
	if s.events == nil {
		return
	}
	ev := &OrderEvent{
		Type:          EventOrderPaid,
		OrderID:       p.OrderID,
		BookName:      p.BookName,
		CustomerEmail: p.CustomerEmail,
		TrackingID:    p.TrackingID,
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		GetMonitor().RecordMQError()
		zap.L().Warn("publish order.paid failed", zap.Error(err))
	}
}
