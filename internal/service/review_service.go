package service

import (
	"context"
	"fmt"

	"github.com/ratul43/book-courier-server/internal/datamodels/review"
)

// ReviewService 图书评论
type ReviewService struct {
	repo review.Repository
}

// NewReviewService 创建评论服务
func NewReviewService(repo review.Repository) *ReviewService {
	return &ReviewService{repo: repo}
}

// Create 发表评论
func (s *ReviewService) Create(ctx context.Context, r *review.Review) error {
	if r.BookID == "" || r.Email == "" {
		return fmt.Errorf("%w: bookId and email are required", ErrInvalidRequest)
	}
	if r.Rating < 1 || r.Rating > 5 {
		return fmt.Errorf("%w: rating must be 1-5", ErrInvalidRequest)
	}
	return s.repo.Create(ctx, r)
}

// ListByBook 某本书的评论，最新的在前
func (s *ReviewService) ListByBook(ctx context.Context, bookID string) ([]*review.Review, error) {
	if bookID == "" {
		return nil, fmt.Errorf("%w: bookId is required", ErrInvalidRequest)
	}
	return s.repo.ListByBook(ctx, bookID)
}

// UpdateUserProfile 用户改昵称/头像后，刷新其全部评论上的展示信息
func (s *ReviewService) UpdateUserProfile(ctx context.Context, email, userName, userPhoto string) (int64, error) {
	if email == "" {
		return 0, fmt.Errorf("%w: email is required", ErrInvalidRequest)
	}
	return s.repo.UpdateUserProfile(ctx, email, userName, userPhoto)
}
