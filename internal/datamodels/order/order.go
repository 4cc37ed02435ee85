package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 订单状态
const (
	StatusPlaced    = "placed"
	StatusCancelled = "cancelled"
	StatusPaid      = "paid"
)

// 支付状态
const (
	PaymentUnpaid = "unpaid"
	PaymentPaid   = "paid"
)

// Order 订单模型
type Order struct {
	ID            string    `gorm:"primaryKey;size:36" json:"_id"`
	BookID        string    `gorm:"size:36;index;not null" json:"bookId"`
	BookName      string    `gorm:"size:128" json:"bookName"`
	Image         string    `gorm:"size:512" json:"image"`
	CustomerEmail string    `gorm:"size:128;index" json:"customerEmail"`
	CustomerName  string    `gorm:"size:128" json:"customerName"`
	Address       string    `gorm:"size:256" json:"address"`
	Phone         string    `gorm:"size:32" json:"phone"`
	TotalCost     int64     `gorm:"not null" json:"totalCost"` // 分
	Status        string    `gorm:"size:16;index" json:"status"`
	PaymentStatus string    `gorm:"size:16" json:"paymentStatus"`
	TrackingID    string    `gorm:"size:32" json:"trackingId"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// BeforeCreate 主键由存储层分配
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// Repository 订单仓储接口
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	GetByEmail(ctx context.Context, email string) (*Order, error)
	ListRecent(ctx context.Context) ([]*Order, error)
	SetStatus(ctx context.Context, id string, status string) (int64, error)
	// MarkPaid 将订单置为已支付并写入运单号，幂等：重复调用结果一致
	MarkPaid(ctx context.Context, id string, trackingID string) (int64, error)
	// DeleteByBookID 按图书删除订单（图书删除级联），返回删除条数
	DeleteByBookID(ctx context.Context, bookID string) (int64, error)
}
