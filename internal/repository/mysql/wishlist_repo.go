package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/ratul43/book-courier-server/internal/datamodels/wishlist"
)

type wishlistRepo struct {
	db *gorm.DB
}

// NewWishlistRepository 创建心愿单仓储
func NewWishlistRepository(db *gorm.DB) wishlist.Repository {
	return &wishlistRepo{db: db}
}

func (r *wishlistRepo) Create(ctx context.Context, i *wishlist.Item) error {
	return r.db.WithContext(ctx).Create(i).Error
}

func (r *wishlistRepo) List(ctx context.Context, email string) ([]*wishlist.Item, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if email != "" {
		q = q.Where("email = ?", email)
	}
	var list []*wishlist.Item
	if err := q.Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
