package book

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 发布状态
const (
	StatusPublished   = "published"
	StatusUnpublished = "unpublished"
)

// Book 图书模型
type Book struct {
	ID            string    `gorm:"primaryKey;size:36" json:"_id"`
	BookName      string    `gorm:"size:128;not null" json:"bookName"`
	Author        string    `gorm:"size:128" json:"author"`
	Image         string    `gorm:"size:512" json:"image"`
	Price         int64     `gorm:"not null" json:"price"` // 分
	Category      string    `gorm:"size:32;index" json:"category"`
	Description   string    `gorm:"size:1024" json:"description"`
	PublishStatus string    `gorm:"size:16;index" json:"publishStatus"` // published / unpublished
	AddedBy       string    `gorm:"size:128;index" json:"addedBy"`      // 上架馆员邮箱
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// BeforeCreate 主键由存储层分配（uuid），与外部不透明 ID 约定一致
func (b *Book) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// Repository 图书仓储接口
type Repository interface {
	GetByID(ctx context.Context, id string) (*Book, error)
	ListAll(ctx context.Context) ([]*Book, error)
	ListPublished(ctx context.Context) ([]*Book, error)
	ListPublishedSorted(ctx context.Context, column string, desc bool) ([]*Book, error)
	Create(ctx context.Context, b *Book) error
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) (int64, error)
	SetPublishStatus(ctx context.Context, id string, status string) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
}
