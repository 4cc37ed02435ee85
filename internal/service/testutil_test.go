package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"

	"github.com/ratul43/book-courier-server/internal/repository/mysql"
)

// newTestDB 每个测试一个独立的内存 SQLite 库，结构与线上一致
// MaxOpenConns(1)：内存库走单连接，goroutine 仍会在 DB 调用之间交错，
// 正好复现存在性检查与插入之间的竞态窗口。
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

	if err := mysql.AutoMigrate(db); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

// fakeProvider 内存假网关，测试里代替 Stripe
type fakeProvider struct {
	mu       sync.Mutex
	sessions map[string]*CheckoutSession
	getErr   error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{sessions: map[string]*CheckoutSession{}}
}

func (f *fakeProvider) put(s *CheckoutSession) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[s.ID] = s
}

func (f *fakeProvider) CreateSession(ctx context.Context, req *CheckoutRequest) (*CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := &CheckoutSession{
		ID:            "cs_" + uuid.NewString(),
		URL:           "https://checkout.test/session",
		PaymentStatus: "unpaid",
		AmountTotal:   req.TotalCost,
		Currency:      "usd",
		CustomerEmail: req.CustomerEmail,
		Metadata: map[string]string{
			"bookId":   req.OrderID,
			"bookName": req.BookName,
		},
	}
	f.sessions[s.ID] = s
	return s, nil
}

func (f *fakeProvider) GetSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	s, ok := f.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return s, nil
}
