package service

import (
	"context"
	"fmt"

	"github.com/ratul43/book-courier-server/internal/datamodels/wishlist"
)

// WishlistService 心愿单
type WishlistService struct {
	repo wishlist.Repository
}

// NewWishlistService 创建心愿单服务
func NewWishlistService(repo wishlist.Repository) *WishlistService {
	return &WishlistService{repo: repo}
}

// Add 收藏图书
func (s *WishlistService) Add(ctx context.Context, i *wishlist.Item) error {
	if i.BookID == "" || i.Email == "" {
		return fmt.Errorf("%w: bookId and email are required", ErrInvalidRequest)
	}
	return s.repo.Create(ctx, i)
}

// List email 为空时返回全部条目
func (s *WishlistService) List(ctx context.Context, email string) ([]*wishlist.Item, error) {
	return s.repo.List(ctx, email)
}
