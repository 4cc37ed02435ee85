package service

import "context"

// 网关侧的支付完成状态
const SessionPaid = "paid"

// CheckoutSession 托管收银台会话在本系统内的投影
type CheckoutSession struct {
	ID              string            `json:"id"`
	URL             string            `json:"url"`
	PaymentIntentID string            `json:"paymentIntentId"`
	PaymentStatus   string            `json:"paymentStatus"`
	AmountTotal     int64             `json:"amountTotal"` // 分
	Currency        string            `json:"currency"`
	CustomerEmail   string            `json:"customerEmail"`
	Metadata        map[string]string `json:"metadata"`
}

// CheckoutRequest 创建收银台会话所需的订单信息
type CheckoutRequest struct {
	// OrderID 写入会话 metadata（字段名沿用前端的 bookId），确认时用来定位订单
	OrderID       string `json:"bookId"`
	BookName      string `json:"bookName"`
	TotalCost     int64  `json:"totalCost"` // 分
	CustomerEmail string `json:"customerEmail"`
}

// CheckoutProvider 支付网关能力抽象，生产实现走 Stripe，测试注入内存假实现
type CheckoutProvider interface {
	CreateSession(ctx context.Context, req *CheckoutRequest) (*CheckoutSession, error)
	GetSession(ctx context.Context, sessionID string) (*CheckoutSession, error)
}
