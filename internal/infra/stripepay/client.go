package stripepay

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/ratul43/book-courier-server/internal/config"
	"github.com/ratul43/book-courier-server/internal/service"
)

// Client 基于 Stripe Checkout 的支付网关实现
type Client struct {
	api        *client.API
	siteDomain string
}

// New 创建 Stripe 客户端
func New(cfg *config.StripeConfig) *Client {
	api := &client.API{}
	api.Init(cfg.SecretKey, nil)
	return &Client{
		api:        api,
		siteDomain: cfg.SiteDomain,
	}
}

// CreateSession 创建托管收银台会话，单件商品、USD 计价
func (c *Client) CreateSession(ctx context.Context, req *service.CheckoutRequest) (*service.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		CustomerEmail: stripe.String(req.CustomerEmail),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(string(stripe.CurrencyUSD)),
					UnitAmount: stripe.Int64(req.TotalCost),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.BookName),
					},
				},
			},
		},
		SuccessURL: stripe.String(c.siteDomain + "/dashboard/payment-success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(c.siteDomain + "/dashboard/payment-cancelled"),
	}
	params.Context = ctx
	// 前端字段名历史原因叫 bookId，实际存放订单 id
	params.AddMetadata("bookId", req.OrderID)
	params.AddMetadata("bookName", req.BookName)

	s, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, mapErr(err)
	}
	return toSession(s), nil
}

// GetSession 按 id 拉取会话
func (c *Client) GetSession(ctx context.Context, sessionID string) (*service.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	s, err := c.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, mapErr(err)
	}
	return toSession(s), nil
}

func toSession(s *stripe.CheckoutSession) *service.CheckoutSession {
	out := &service.CheckoutSession{
		ID:            s.ID,
		URL:           s.URL,
		PaymentStatus: string(s.PaymentStatus),
		AmountTotal:   s.AmountTotal,
		Currency:      string(s.Currency),
		CustomerEmail: s.CustomerEmail,
		Metadata:      s.Metadata,
	}
	if s.PaymentIntent != nil {
		out.PaymentIntentID = s.PaymentIntent.ID
	}
	return out
}

// mapErr 把 Stripe 错误翻译成服务层错误分类
func mapErr(err error) error {
	if stripeErr, ok := err.(*stripe.Error); ok {
		if stripeErr.Code == stripe.ErrorCodeResourceMissing || stripeErr.HTTPStatusCode == 404 {
			return fmt.Errorf("%w: %s", service.ErrSessionNotFound, stripeErr.Msg)
		}
		return fmt.Errorf("%w: %s", service.ErrUpstreamUnavailable, stripeErr.Msg)
	}
	return fmt.Errorf("%w: %v", service.ErrUpstreamUnavailable, err)
}
