package service

import (
	"sync"
	"time"
)

// Monitor 监控服务，用于统计错误和支付链路指标
type Monitor struct {
	mu sync.RWMutex

	// 错误统计
	RedisErrors int64
	MQErrors    int64
	DBErrors    int64

	// 支付链路统计
	CheckoutSessions  int64
	ConfirmRequests   int64
	ConfirmSuccess    int64
	ConfirmDuplicates int64
	ConfirmPending    int64

	// 通知 worker 统计
	WorkerProcessed int64
	WorkerFailed    int64

	// 时间统计
	LastRedisError  time.Time
	LastMQError     time.Time
	LastDBError     time.Time
	LastConfirmTime time.Time
	LastWorkerTime  time.Time
}

var globalMonitor = &Monitor{}

// GetMonitor 获取全局监控实例
func GetMonitor() *Monitor {
	return globalMonitor
}

// RecordRedisError 记录Redis错误
func (m *Monitor) RecordRedisError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RedisErrors++
	m.LastRedisError = time.Now()
}

// RecordMQError 记录MQ错误
func (m *Monitor) RecordMQError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MQErrors++
	m.LastMQError = time.Now()
}

// RecordDBError 记录数据库错误
func (m *Monitor) RecordDBError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DBErrors++
	m.LastDBError = time.Now()
}

// RecordCheckoutSession 记录收银台会话创建
func (m *Monitor) RecordCheckoutSession() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CheckoutSessions++
}

// RecordConfirmRequest 记录支付确认请求
func (m *Monitor) RecordConfirmRequest() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ConfirmRequests++
	m.LastConfirmTime = time.Now()
}

// RecordConfirmSuccess 记录首次确认成功（写入账本）
func (m *Monitor) RecordConfirmSuccess() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ConfirmSuccess++
}

// RecordConfirmDuplicate 记录重复确认（命中账本）
func (m *Monitor) RecordConfirmDuplicate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ConfirmDuplicates++
}

// RecordConfirmPending 记录未完成支付的确认请求
func (m *Monitor) RecordConfirmPending() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ConfirmPending++
}

// RecordWorkerProcessed 记录Worker处理成功
func (m *Monitor) RecordWorkerProcessed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WorkerProcessed++
	m.LastWorkerTime = time.Now()
}

// RecordWorkerFailed 记录Worker处理失败
func (m *Monitor) RecordWorkerFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WorkerFailed++
}

// GetStats 获取统计信息
func (m *Monitor) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	duplicateRate := float64(0)
	if m.ConfirmRequests > 0 {
		duplicateRate = float64(m.ConfirmDuplicates) / float64(m.ConfirmRequests) * 100
	}

	return map[string]interface{}{
		"errors": map[string]interface{}{
			"redis": m.RedisErrors,
			"mq":    m.MQErrors,
			"db":    m.DBErrors,
		},
		"payments": map[string]interface{}{
			"checkout_sessions":  m.CheckoutSessions,
			"confirm_requests":   m.ConfirmRequests,
			"confirm_success":    m.ConfirmSuccess,
			"confirm_duplicates": m.ConfirmDuplicates,
			"confirm_pending":    m.ConfirmPending,
			"duplicate_rate":     duplicateRate,
		},
		"worker": map[string]interface{}{
			"processed": m.WorkerProcessed,
			"failed":    m.WorkerFailed,
		},
		"last_events": map[string]interface{}{
			"redis_error":  m.LastRedisError,
			"mq_error":     m.LastMQError,
			"db_error":     m.LastDBError,
			"last_confirm": m.LastConfirmTime,
			"last_worker":  m.LastWorkerTime,
		},
	}
}

// Reset 重置统计（用于测试或定期清理）
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RedisErrors = 0
	m.MQErrors = 0
	m.DBErrors = 0
	m.CheckoutSessions = 0
	m.ConfirmRequests = 0
	m.ConfirmSuccess = 0
	m.ConfirmDuplicates = 0
	m.ConfirmPending = 0
	m.WorkerProcessed = 0
	m.WorkerFailed = 0
}
