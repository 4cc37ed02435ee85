package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ratul43/book-courier-server/internal/datamodels/order"
	"github.com/ratul43/book-courier-server/internal/repository/mysql"
)

func newOrderService(t *testing.T) *OrderService {
	t.Helper()
	return NewOrderService(mysql.NewOrderRepository(newTestDB(t)), nil)
}

func TestOrderService_CreateDefaults(t *testing.T) {
	svc := newOrderService(t)
	ctx := context.Background()

	o := &order.Order{
		BookID:        "book-1",
		BookName:      "Dune",
		CustomerEmail: "reader@example.com",
		// 客户端传什么状态都不算数
		Status:        order.StatusPaid,
		PaymentStatus: order.PaymentPaid,
		TrackingID:    "PRCL-20260101-FFFFFF",
	}
	require.NoError(t, svc.Create(ctx, o))
	require.NotEmpty(t, o.ID)
	require.Equal(t, order.StatusPlaced, o.Status)
	require.Equal(t, order.PaymentUnpaid, o.PaymentStatus)
	require.Empty(t, o.TrackingID)

	err := svc.Create(ctx, &order.Order{BookID: "book-1"})
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestOrderService_StatusTransitions(t *testing.T) {
	svc := newOrderService(t)
	ctx := context.Background()

	o := &order.Order{BookID: "book-1", CustomerEmail: "reader@example.com"}
	require.NoError(t, svc.Create(ctx, o))

	require.NoError(t, svc.Cancel(ctx, o.ID))
	got, err := svc.GetByEmail(ctx, "reader@example.com")
	require.NoError(t, err)
	require.Equal(t, order.StatusCancelled, got.Status)

	err = svc.SetStatus(ctx, o.ID, "shipped")
	require.ErrorIs(t, err, ErrInvalidRequest)

	err = svc.SetStatus(ctx, "missing", order.StatusPlaced)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestOrderService_GetByEmail(t *testing.T) {
	svc := newOrderService(t)
	ctx := context.Background()

	_, err := svc.GetByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.GetByEmail(ctx, "")
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestOrderService_ListRecent(t *testing.T) {
	svc := newOrderService(t)
	ctx := context.Background()

	for _, email := range []string{"a@example.com", "b@example.com"} {
		require.NoError(t, svc.Create(ctx, &order.Order{BookID: "book-1", CustomerEmail: email}))
	}
	list, err := svc.ListRecent(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
}
