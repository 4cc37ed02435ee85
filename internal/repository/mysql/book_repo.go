package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/ratul43/book-courier-server/internal/datamodels/book"
)

// 允许排序的列白名单，排序字段来自查询参数，不能直接拼进 SQL
var sortableBookColumns = map[string]string{
	"price":     "price",
	"bookName":  "book_name",
	"author":    "author",
	"category":  "category",
	"createdAt": "created_at",
}

type bookRepo struct {
	db *gorm.DB
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) book.Repository {
	return &bookRepo{db: db}
}

func (r *bookRepo) GetByID(ctx context.Context, id string) (*book.Book, error) {
	var b book.Book
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bookRepo) ListAll(ctx context.Context) ([]*book.Book, error) {
	var list []*book.Book
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *bookRepo) ListPublished(ctx context.Context) ([]*book.Book, error) {
	var list []*book.Book
	if err := r.db.WithContext(ctx).
		Where("publish_status = ?", book.StatusPublished).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *bookRepo) ListPublishedSorted(ctx context.Context, column string, desc bool) ([]*book.Book, error) {
	col, ok := sortableBookColumns[column]
	if !ok {
		col = "created_at"
	}
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	var list []*book.Book
	if err := r.db.WithContext(ctx).
		Where("publish_status = ?", book.StatusPublished).
		Order(col + " " + dir).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *bookRepo) Create(ctx context.Context, b *book.Book) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *bookRepo) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&book.Book{}).
		Where("id = ?", id).
		Updates(fields)
	return res.RowsAffected, res.Error
}

func (r *bookRepo) SetPublishStatus(ctx context.Context, id string, status string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&book.Book{}).
		Where("id = ?", id).
		Update("publish_status", status)
	return res.RowsAffected, res.Error
}

func (r *bookRepo) Delete(ctx context.Context, id string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&book.Book{})
	return res.RowsAffected, res.Error
}
