package payment

import (
	"context"
	"time"
)

// Payment 支付流水（账本条目）
// TransactionID 上有唯一索引，是系统保证恰好一次入账的唯一约束；
// 记录创建后不再修改。
type Payment struct {
	ID            int64     `gorm:"primaryKey" json:"id"`
	TransactionID string    `gorm:"uniqueIndex;size:128;not null" json:"transactionId"`
	SessionID     string    `gorm:"index;size:128" json:"sessionId"`
	OrderID       string    `gorm:"index;size:36" json:"orderId"`
	BookName      string    `gorm:"size:128" json:"bookName"`
	Amount        int64     `gorm:"not null" json:"amount"` // 分
	Currency      string    `gorm:"size:8" json:"currency"`
	CustomerEmail string    `gorm:"size:128" json:"customerEmail"`
	TrackingID    string    `gorm:"size:32" json:"trackingId"`
	PaidAt        time.Time `json:"paidAt"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Repository 支付流水仓储接口
type Repository interface {
	// Create 插入流水；TransactionID 冲突时返回 gorm.ErrDuplicatedKey
	Create(ctx context.Context, p *Payment) error
	GetByTransactionID(ctx context.Context, transactionID string) (*Payment, error)
	ListRecent(ctx context.Context) ([]*Payment, error)
}
