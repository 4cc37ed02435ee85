package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/ratul43/book-courier-server/internal/config"
	"github.com/ratul43/book-courier-server/internal/datamodels/book"
	"github.com/ratul43/book-courier-server/internal/logger"
	"github.com/ratul43/book-courier-server/internal/repository/mysql"
)

// 开发用：往库里塞几本书，方便前端联调
func main() {
	logger.Init()

	cfg := config.Load()
	db := mysql.Init(&cfg.MySQL)
	repo := mysql.NewBookRepository(db)

	books := []*book.Book{
		{BookName: "Dune", Author: "Frank Herbert", Price: 1299, Category: "sci-fi", PublishStatus: book.StatusPublished},
		{BookName: "The Hobbit", Author: "J.R.R. Tolkien", Price: 999, Category: "fantasy", PublishStatus: book.StatusPublished},
		{BookName: "Clean Code", Author: "Robert C. Martin", Price: 2499, Category: "tech", PublishStatus: book.StatusPublished},
		{BookName: "Norwegian Wood", Author: "Haruki Murakami", Price: 1099, Category: "fiction", PublishStatus: book.StatusUnpublished},
	}

	ctx := context.Background()
	for _, b := range books {
		if err := repo.Create(ctx, b); err != nil {
			zap.L().Error("seed book failed", zap.String("book", b.BookName), zap.Error(err))
			continue
		}
		zap.L().Info("seeded book", zap.String("id", b.ID), zap.String("book", b.BookName))
	}
}
