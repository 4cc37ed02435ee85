package user

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 用户角色
const (
	RoleUser      = "user"
	RoleLibrarian = "librarian"
	RoleAdmin     = "admin"
)

// User 用户模型
type User struct {
	ID        string    `gorm:"primaryKey;size:36" json:"_id"`
	Email     string    `gorm:"uniqueIndex;size:128;not null" json:"email"`
	Name      string    `gorm:"size:128" json:"name"`
	Photo     string    `gorm:"size:512" json:"photo"`
	Role      string    `gorm:"size:16;index" json:"role"` // user / librarian / admin
	Password  string    `gorm:"size:255" json:"-"`         // 已加密密码
	Salt      string    `gorm:"size:64" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate 主键由存储层分配
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// Repository 用户仓储接口
type Repository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, u *User) error
	ListAll(ctx context.Context) ([]*User, error)
	// UpdateByEmail 按邮箱更新资料字段，返回影响行数
	UpdateByEmail(ctx context.Context, email string, fields map[string]interface{}) (int64, error)
	SetRole(ctx context.Context, email string, role string) (int64, error)
}
