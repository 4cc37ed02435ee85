package wishlist

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Item 心愿单条目
type Item struct {
	ID        string    `gorm:"primaryKey;size:36" json:"_id"`
	BookID    string    `gorm:"size:36;index;not null" json:"bookId"`
	BookName  string    `gorm:"size:128" json:"bookName"`
	Image     string    `gorm:"size:512" json:"image"`
	Email     string    `gorm:"size:128;index" json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate 主键由存储层分配
func (i *Item) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// Repository 心愿单仓储接口
type Repository interface {
	Create(ctx context.Context, i *Item) error
	// List email 为空时返回全部
	List(ctx context.Context, email string) ([]*Item, error)
}
