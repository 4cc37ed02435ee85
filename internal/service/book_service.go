package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/ratul43/book-courier-server/internal/datamodels/book"
	"github.com/ratul43/book-courier-server/internal/datamodels/order"
)

// BookService 图书管理
type BookService struct {
	repo      book.Repository
	orderRepo order.Repository
}

// NewBookService 创建图书服务
func NewBookService(repo book.Repository, orderRepo order.Repository) *BookService {
	return &BookService{repo: repo, orderRepo: orderRepo}
}

// GetByID 查询单本图书
func (s *BookService) GetByID(ctx context.Context, id string) (*book.Book, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: book id is required", ErrInvalidRequest)
	}
	b, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return b, err
}

// ListAll 全部图书，最新的在前
func (s *BookService) ListAll(ctx context.Context) ([]*book.Book, error) {
	return s.repo.ListAll(ctx)
}

// ListPublished 已上架图书
func (s *BookService) ListPublished(ctx context.Context) ([]*book.Book, error) {
	return s.repo.ListPublished(ctx)
}

// ListPublishedSorted 已上架图书按指定字段排序，字段在仓储层走白名单
func (s *BookService) ListPublishedSorted(ctx context.Context, column, direction string) ([]*book.Book, error) {
	return s.repo.ListPublishedSorted(ctx, column, direction == "desc")
}

// Create 新增图书，默认未上架
func (s *BookService) Create(ctx context.Context, b *book.Book) error {
	if b.BookName == "" {
		return fmt.Errorf("%w: bookName is required", ErrInvalidRequest)
	}
	if b.PublishStatus == "" {
		b.PublishStatus = book.StatusUnpublished
	}
	return s.repo.Create(ctx, b)
}

// SetPublishStatus 上架/下架
func (s *BookService) SetPublishStatus(ctx context.Context, id, status string) error {
	if id == "" {
		return fmt.Errorf("%w: book id is required", ErrInvalidRequest)
	}
	if status != book.StatusPublished && status != book.StatusUnpublished {
		return fmt.Errorf("%w: unknown publish status %q", ErrInvalidRequest, status)
	}
	rows, err := s.repo.SetPublishStatus(ctx, id, status)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateFields 馆员更新图书资料
func (s *BookService) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	if id == "" || len(fields) == 0 {
		return fmt.Errorf("%w: book id and fields are required", ErrInvalidRequest)
	}
	rows, err := s.repo.UpdateFields(ctx, id, fields)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteResult 级联删除的结果
type DeleteResult struct {
	DeletedBook   int64 `json:"deletedBook"`
	DeletedOrders int64 `json:"deletedOrders"`
}

// Delete 删除图书并级联删除其全部订单
func (s *BookService) Delete(ctx context.Context, id string) (*DeleteResult, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: book id is required", ErrInvalidRequest)
	}
	deletedOrders, err := s.orderRepo.DeleteByBookID(ctx, id)
	if err != nil {
		return nil, err
	}
	deletedBook, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	if deletedBook == 0 {
		return nil, ErrNotFound
	}
	return &DeleteResult{
		DeletedBook:   deletedBook,
		DeletedOrders: deletedOrders,
	}, nil
}
