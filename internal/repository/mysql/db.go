package mysql

import (
	"log"
	"sync"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/ratul43/book-courier-server/internal/config"
	"github.com/ratul43/book-courier-server/internal/datamodels/book"
	"github.com/ratul43/book-courier-server/internal/datamodels/order"
	"github.com/ratul43/book-courier-server/internal/datamodels/payment"
	"github.com/ratul43/book-courier-server/internal/datamodels/review"
	"github.com/ratul43/book-courier-server/internal/datamodels/user"
	"github.com/ratul43/book-courier-server/internal/datamodels/wishlist"
)

var (
	db   *gorm.DB
	once sync.Once
)

// Init 初始化全局 GORM 实例并自动迁移表结构
// TranslateError 打开后，transaction_id 唯一索引冲突会转换成 gorm.ErrDuplicatedKey，
// 支付确认依赖这一点把冲突当作重复请求处理。
func Init(cfg *config.MySQLConfig) *gorm.DB {
	once.Do(func() {
		var err error
		db, err = gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{TranslateError: true})
		if err != nil {
			log.Fatalf("failed to connect mysql: %v", err)
		}

		if err = AutoMigrate(db); err != nil {
			log.Fatalf("auto migrate failed: %v", err)
		}
	})
	return db
}

// AutoMigrate 迁移全部业务表（测试里也会对内存库调用）
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&user.User{},
		&book.Book{},
		&order.Order{},
		&payment.Payment{},
		&review.Review{},
		&wishlist.Item{},
	)
}

// DB 获取全局 DB
func DB() *gorm.DB {
	return db
}
