package service

import (
	"context"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ratul43/book-courier-server/internal/datamodels/order"
	"github.com/ratul43/book-courier-server/internal/datamodels/payment"
	"github.com/ratul43/book-courier-server/internal/repository/mysql"
)

var trackingPattern = regexp.MustCompile(`^PRCL-\d{8}-[0-9A-F]{6}$`)

type paymentFixture struct {
	svc         *PaymentService
	provider    *fakeProvider
	orderRepo   order.Repository
	paymentRepo payment.Repository
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	db := newTestDB(t)
	provider := newFakeProvider()
	orderRepo := mysql.NewOrderRepository(db)
	paymentRepo := mysql.NewPaymentRepository(db)
	return &paymentFixture{
		svc:         NewPaymentService(provider, orderRepo, paymentRepo, nil, nil),
		provider:    provider,
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
	}
}

// placeOrder 造一笔待支付订单并在假网关里挂上已支付的 session
func (f *paymentFixture) placeOrder(t *testing.T, sessionID, transactionID string) *order.Order {
	t.Helper()
	o := &order.Order{
		BookID:        "book-1",
		BookName:      "Dune",
		CustomerEmail: "reader@example.com",
		TotalCost:     1299,
		Status:        order.StatusPlaced,
		PaymentStatus: order.PaymentUnpaid,
	}
	require.NoError(t, f.orderRepo.Create(context.Background(), o))
	f.provider.put(&CheckoutSession{
		ID:              sessionID,
		PaymentIntentID: transactionID,
		PaymentStatus:   SessionPaid,
		AmountTotal:     1299,
		Currency:        "usd",
		CustomerEmail:   o.CustomerEmail,
		Metadata: map[string]string{
			"bookId":   o.ID,
			"bookName": o.BookName,
		},
	})
	return o
}

func TestConfirmPayment_HappyPath(t *testing.T) {
	f := newPaymentFixture(t)
	o := f.placeOrder(t, "cs_123", "pi_999")

	res, err := f.svc.ConfirmPayment(context.Background(), "cs_123")
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, "pi_999", res.TransactionID)
	require.Regexp(t, trackingPattern, res.TrackingID)

	updated, err := f.orderRepo.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	require.Equal(t, order.StatusPaid, updated.Status)
	require.Equal(t, order.PaymentPaid, updated.PaymentStatus)
	require.Equal(t, res.TrackingID, updated.TrackingID)

	entry, err := f.paymentRepo.GetByTransactionID(context.Background(), "pi_999")
	require.NoError(t, err)
	require.Equal(t, o.ID, entry.OrderID)
	require.Equal(t, int64(1299), entry.Amount)
	require.Equal(t, "usd", entry.Currency)
}

func TestConfirmPayment_Replay(t *testing.T) {
	f := newPaymentFixture(t)
	f.placeOrder(t, "cs_123", "pi_999")

	first, err := f.svc.ConfirmPayment(context.Background(), "cs_123")
	require.NoError(t, err)

	second, err := f.svc.ConfirmPayment(context.Background(), "cs_123")
	require.NoError(t, err)
	require.True(t, second.Success)
	require.Equal(t, "already exists", second.Message)
	require.Equal(t, first.TrackingID, second.TrackingID)
	require.Equal(t, first.TransactionID, second.TransactionID)

	list, err := f.paymentRepo.ListRecent(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1, "replay must not create a second ledger entry")
}

func TestConfirmPayment_Concurrent(t *testing.T) {
	f := newPaymentFixture(t)
	o := f.placeOrder(t, "cs_race", "pi_race")

	const n = 8
	results := make([]*ConfirmResult, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.svc.ConfirmPayment(context.Background(), "cs_race")
		}(i)
	}
	wg.Wait()

	tracking := ""
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		require.True(t, results[i].Success)
		if tracking == "" {
			tracking = results[i].TrackingID
		}
		require.Equal(t, tracking, results[i].TrackingID, "all callers must see the same tracking id")
	}

	list, err := f.paymentRepo.ListRecent(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1, "exactly one ledger entry despite concurrent confirms")

	updated, err := f.orderRepo.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	require.Equal(t, order.StatusPaid, updated.Status)
	require.Equal(t, list[0].TrackingID, updated.TrackingID, "order must end up with the ledger's tracking id")
}

func TestConfirmPayment_Pending(t *testing.T) {
	f := newPaymentFixture(t)
	o := f.placeOrder(t, "cs_pend", "pi_pend")
	f.provider.put(&CheckoutSession{
		ID:              "cs_pend",
		PaymentIntentID: "pi_pend",
		PaymentStatus:   "unpaid",
		Metadata:        map[string]string{"bookId": o.ID},
	})

	res, err := f.svc.ConfirmPayment(context.Background(), "cs_pend")
	require.NoError(t, err)
	require.False(t, res.Success)
	require.True(t, res.Pending)

	// 未完成支付：不入账、不动订单
	list, err := f.paymentRepo.ListRecent(context.Background())
	require.NoError(t, err)
	require.Empty(t, list)

	unchanged, err := f.orderRepo.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	require.Equal(t, order.StatusPlaced, unchanged.Status)
	require.Equal(t, order.PaymentUnpaid, unchanged.PaymentStatus)
}

func TestConfirmPayment_MissingSessionID(t *testing.T) {
	f := newPaymentFixture(t)
	_, err := f.svc.ConfirmPayment(context.Background(), "")
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestConfirmPayment_UnknownSession(t *testing.T) {
	f := newPaymentFixture(t)
	_, err := f.svc.ConfirmPayment(context.Background(), "cs_nobody")
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestConfirmPayment_UpstreamDown(t *testing.T) {
	f := newPaymentFixture(t)
	f.placeOrder(t, "cs_down", "pi_down")
	f.provider.getErr = ErrUpstreamUnavailable

	_, err := f.svc.ConfirmPayment(context.Background(), "cs_down")
	require.ErrorIs(t, err, ErrUpstreamUnavailable)

	list, err := f.paymentRepo.ListRecent(context.Background())
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestCreateCheckoutSession_Validation(t *testing.T) {
	f := newPaymentFixture(t)

	_, err := f.svc.CreateCheckoutSession(context.Background(), &CheckoutRequest{})
	require.ErrorIs(t, err, ErrInvalidRequest)

	res, err := f.svc.CreateCheckoutSession(context.Background(), &CheckoutRequest{
		OrderID:       "ord-1",
		BookName:      "Dune",
		TotalCost:     1299,
		CustomerEmail: "reader@example.com",
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.SessionID)
	require.NotEmpty(t, res.URL)
}

func TestConfirmPayment_ExistingLedgerEntry(t *testing.T) {
	// 预埋账本行：确认必须直接命中存在性检查并原样返回，不再生成新运单号
	f := newPaymentFixture(t)
	f.placeOrder(t, "cs_dup", "pi_dup")

	pre := &payment.Payment{
		TransactionID: "pi_dup",
		SessionID:     "cs_other",
		OrderID:       "ord-x",
		TrackingID:    "PRCL-20260101-ABCDEF",
	}
	require.NoError(t, f.paymentRepo.Create(context.Background(), pre))

	res, err := f.svc.ConfirmPayment(context.Background(), "cs_dup")
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, "already exists", res.Message)
	require.Equal(t, "PRCL-20260101-ABCDEF", res.TrackingID)
}
