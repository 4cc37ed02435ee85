package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/ratul43/book-courier-server/internal/datamodels/user"
)

type userRepo struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓储
func NewUserRepository(db *gorm.DB) user.Repository {
	return &userRepo{db: db}
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var u user.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) Create(ctx context.Context, u *user.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *userRepo) ListAll(ctx context.Context) ([]*user.User, error) {
	var list []*user.User
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *userRepo) UpdateByEmail(ctx context.Context, email string, fields map[string]interface{}) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&user.User{}).
		Where("email = ?", email).
		Updates(fields)
	return res.RowsAffected, res.Error
}

func (r *userRepo) SetRole(ctx context.Context, email string, role string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&user.User{}).
		Where("email = ?", email).
		Update("role", role)
	return res.RowsAffected, res.Error
}
