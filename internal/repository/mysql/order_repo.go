package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/ratul43/book-courier-server/internal/datamodels/order"
)

type orderRepo struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepo{db: db}
}

func (r *orderRepo) Create(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *orderRepo) GetByID(ctx context.Context, id string) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) GetByEmail(ctx context.Context, email string) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).
		Where("customer_email = ?", email).
		Order("created_at DESC").
		First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) ListRecent(ctx context.Context) ([]*order.Order, error) {
	var list []*order.Order
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *orderRepo) SetStatus(ctx context.Context, id string, status string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&order.Order{}).
		Where("id = ?", id).
		Update("status", status)
	return res.RowsAffected, res.Error
}

func (r *orderRepo) MarkPaid(ctx context.Context, id string, trackingID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&order.Order{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":         order.StatusPaid,
			"payment_status": order.PaymentPaid,
			"tracking_id":    trackingID,
		})
	return res.RowsAffected, res.Error
}

func (r *orderRepo) DeleteByBookID(ctx context.Context, bookID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("book_id = ?", bookID).
		Delete(&order.Order{})
	return res.RowsAffected, res.Error
}
