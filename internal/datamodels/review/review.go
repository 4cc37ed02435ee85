package review

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Review 图书评论模型
type Review struct {
	ID        string    `gorm:"primaryKey;size:36" json:"_id"`
	BookID    string    `gorm:"size:36;index;not null" json:"bookId"`
	Email     string    `gorm:"size:128;index" json:"email"`
	UserName  string    `gorm:"size:128" json:"userName"`
	UserPhoto string    `gorm:"size:512" json:"userPhoto"`
	Rating    int       `gorm:"not null" json:"rating"`
	Comment   string    `gorm:"size:2048" json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate 主键由存储层分配
func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// Repository 评论仓储接口
type Repository interface {
	Create(ctx context.Context, r *Review) error
	ListByBook(ctx context.Context, bookID string) ([]*Review, error)
	// UpdateUserProfile 按邮箱批量刷新评论上的昵称/头像，返回影响行数
	UpdateUserProfile(ctx context.Context, email, userName, userPhoto string) (int64, error)
}
