package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ratul43/book-courier-server/internal/datamodels/book"
	"github.com/ratul43/book-courier-server/internal/datamodels/order"
	"github.com/ratul43/book-courier-server/internal/repository/mysql"
)

func newBookFixture(t *testing.T) (*BookService, order.Repository) {
	t.Helper()
	db := newTestDB(t)
	orderRepo := mysql.NewOrderRepository(db)
	return NewBookService(mysql.NewBookRepository(db), orderRepo), orderRepo
}

func TestBookService_CascadeDelete(t *testing.T) {
	svc, orderRepo := newBookFixture(t)
	ctx := context.Background()

	b := &book.Book{BookName: "Dune", PublishStatus: book.StatusPublished}
	require.NoError(t, svc.Create(ctx, b))

	// 同一本书三笔订单，外加一笔别的书的订单
	for i := 0; i < 3; i++ {
		require.NoError(t, orderRepo.Create(ctx, &order.Order{
			BookID:        b.ID,
			CustomerEmail: "reader@example.com",
			Status:        order.StatusPlaced,
		}))
	}
	other := &order.Order{BookID: "other-book", CustomerEmail: "x@example.com", Status: order.StatusPlaced}
	require.NoError(t, orderRepo.Create(ctx, other))

	res, err := svc.Delete(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), res.DeletedBook)
	require.Equal(t, int64(3), res.DeletedOrders)

	_, err = svc.GetByID(ctx, b.ID)
	require.ErrorIs(t, err, ErrNotFound)

	// 别的书的订单不受影响
	kept, err := orderRepo.GetByID(ctx, other.ID)
	require.NoError(t, err)
	require.Equal(t, "other-book", kept.BookID)
}

func TestBookService_PublishToggle(t *testing.T) {
	svc, _ := newBookFixture(t)
	ctx := context.Background()

	b := &book.Book{BookName: "The Hobbit"}
	require.NoError(t, svc.Create(ctx, b))
	require.Equal(t, book.StatusUnpublished, b.PublishStatus)

	require.NoError(t, svc.SetPublishStatus(ctx, b.ID, book.StatusPublished))

	published, err := svc.ListPublished(ctx)
	require.NoError(t, err)
	require.Len(t, published, 1)
	require.Equal(t, b.ID, published[0].ID)

	err = svc.SetPublishStatus(ctx, b.ID, "archived")
	require.ErrorIs(t, err, ErrInvalidRequest)

	err = svc.SetPublishStatus(ctx, "missing-id", book.StatusPublished)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestBookService_SortedListing(t *testing.T) {
	svc, _ := newBookFixture(t)
	ctx := context.Background()

	for _, spec := range []struct {
		name  string
		price int64
	}{
		{"B", 2000},
		{"A", 1000},
		{"C", 3000},
	} {
		require.NoError(t, svc.Create(ctx, &book.Book{
			BookName:      spec.name,
			Price:         spec.price,
			PublishStatus: book.StatusPublished,
		}))
	}

	asc, err := svc.ListPublishedSorted(ctx, "price", "asc")
	require.NoError(t, err)
	require.Len(t, asc, 3)
	require.Equal(t, int64(1000), asc[0].Price)
	require.Equal(t, int64(3000), asc[2].Price)

	desc, err := svc.ListPublishedSorted(ctx, "bookName", "desc")
	require.NoError(t, err)
	require.Equal(t, "C", desc[0].BookName)

	// 未知排序字段回落到 createdAt，而不是把参数拼进 SQL
	_, err = svc.ListPublishedSorted(ctx, "price; DROP TABLE books", "asc")
	require.NoError(t, err)
}
