package mysql

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"

	"github.com/ratul43/book-courier-server/internal/datamodels/payment"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         glogger.Default.LogMode(glogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := AutoMigrate(db); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

// transaction_id 唯一索引是恰好一次入账的兜底，
// 冲突必须翻译成 gorm.ErrDuplicatedKey 才能走重复请求分支
func TestPaymentRepo_DuplicateTransactionID(t *testing.T) {
	repo := NewPaymentRepository(newTestDB(t))
	ctx := context.Background()

	first := &payment.Payment{TransactionID: "pi_1", TrackingID: "PRCL-20260101-AAAAAA"}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("first insert: %v", err)
	}

	second := &payment.Payment{TransactionID: "pi_1", TrackingID: "PRCL-20260101-BBBBBB"}
	err := repo.Create(ctx, second)
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("expected gorm.ErrDuplicatedKey, got %v", err)
	}

	got, err := repo.GetByTransactionID(ctx, "pi_1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.TrackingID != "PRCL-20260101-AAAAAA" {
		t.Errorf("ledger entry overwritten: tracking = %s", got.TrackingID)
	}
}

func TestPaymentRepo_ListRecent(t *testing.T) {
	repo := NewPaymentRepository(newTestDB(t))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := repo.Create(ctx, &payment.Payment{
			TransactionID: fmt.Sprintf("pi_%d", i),
		}); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}
	list, err := repo.ListRecent(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 {
		t.Errorf("expected 3 entries, got %d", len(list))
	}
}
