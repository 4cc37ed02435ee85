package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/ratul43/book-courier-server/internal/datamodels/payment"
)

type paymentRepo struct {
	db *gorm.DB
}

// NewPaymentRepository 创建支付流水仓储
func NewPaymentRepository(db *gorm.DB) payment.Repository {
	return &paymentRepo{db: db}
}

func (r *paymentRepo) Create(ctx context.Context, p *payment.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *paymentRepo) GetByTransactionID(ctx context.Context, transactionID string) (*payment.Payment, error) {
	var p payment.Payment
	if err := r.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *paymentRepo) ListRecent(ctx context.Context) ([]*payment.Payment, error) {
	var list []*payment.Payment
	if err := r.db.WithContext(ctx).
		Order("paid_at DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
