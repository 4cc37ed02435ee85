package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/ratul43/book-courier-server/internal/datamodels/review"
)

type reviewRepo struct {
	db *gorm.DB
}

// NewReviewRepository 创建评论仓储
func NewReviewRepository(db *gorm.DB) review.Repository {
	return &reviewRepo{db: db}
}

func (r *reviewRepo) Create(ctx context.Context, rv *review.Review) error {
	return r.db.WithContext(ctx).Create(rv).Error
}

func (r *reviewRepo) ListByBook(ctx context.Context, bookID string) ([]*review.Review, error) {
	var list []*review.Review
	if err := r.db.WithContext(ctx).
		Where("book_id = ?", bookID).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *reviewRepo) UpdateUserProfile(ctx context.Context, email, userName, userPhoto string) (int64, error) {
	fields := map[string]interface{}{}
	if userName != "" {
		fields["user_name"] = userName
	}
	if userPhoto != "" {
		fields["user_photo"] = userPhoto
	}
	if len(fields) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Model(&review.Review{}).
		Where("email = ?", email).
		Updates(fields)
	return res.RowsAffected, res.Error
}
