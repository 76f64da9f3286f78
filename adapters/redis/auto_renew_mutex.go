package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-redsync/redsync/v4"
)

// AutoRenewMutex 是會自動續期的分散式鎖
// 續期失敗時 Lock 回傳的 context 會被取消，持有者應該放棄尚未提交的工作
type AutoRenewMutex struct {
	*redsync.Mutex
	cancel   context.CancelFunc
	renewing bool
	mu       sync.Mutex
	wg       sync.WaitGroup
	options  lockOptions
}

type lockOptions struct {
	renewInterval time.Duration
	retryDelay    time.Duration
	expiry        time.Duration
	skipLockError bool
}

type LockOption func(*lockOptions)

// WithLockRenewInterval 設置自動續期間隔
func WithLockRenewInterval(d time.Duration) LockOption {
	return func(o *lockOptions) {
		o.renewInterval = d
	}
}

// WithLockRetryDelay 設置鎖被佔用時的重試間隔
func WithLockRetryDelay(d time.Duration) LockOption {
	return func(o *lockOptions) {
		o.retryDelay = d
	}
}

// WithLockExpiry 設置鎖過期時間
func WithLockExpiry(d time.Duration) LockOption {
	return func(o *lockOptions) {
		o.expiry = d
	}
}

// WithLockSkipError 設置是否忽略 Redis 錯誤並持續重試直到 context 結束
func WithLockSkipError(skip bool) LockOption {
	return func(o *lockOptions) {
		o.skipLockError = skip
	}
}

func newLockOptions(opts ...LockOption) lockOptions {
	options := lockOptions{
		expiry:     8 * time.Second,
		retryDelay: 50 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(&options)
	}
	// 未設置續期間隔時使用過期時間的1/3
	if options.renewInterval <= 0 {
		options.renewInterval = options.expiry / 3
	}
	return options
}

// NewAutoRenewMutex 以共用的 redsync 建立互斥鎖
func NewAutoRenewMutex(rs *redsync.Redsync, key string, opts ...LockOption) *AutoRenewMutex {
	options := newLockOptions(opts...)
	return newAutoRenewMutex(rs, key, options)
}

func newAutoRenewMutex(rs *redsync.Redsync, key string, options lockOptions) *AutoRenewMutex {
	mutex := rs.NewMutex(
		key,
		redsync.WithExpiry(options.expiry),
		redsync.WithTries(1),
		redsync.WithRetryDelay(options.retryDelay),
	)
	return &AutoRenewMutex{
		Mutex:   mutex,
		options: options,
	}
}

// Lock 獲取鎖並啟動自動續期，鎖被佔用時每隔 retryDelay 重試直到 ctx 結束
func (m *AutoRenewMutex) Lock(ctx context.Context) (context.Context, error) {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
			err := m.Mutex.LockContext(ctx)
			if err == nil {
				lockCtx, cancel := context.WithCancel(ctx)
				m.mu.Lock()
				m.cancel = cancel
				m.mu.Unlock()
				m.startAutoRenew(lockCtx)
				return lockCtx, nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			// 鎖被佔用時重試；Redis 錯誤只有在 skipLockError 時才重試
			var commErr *redsync.RedisError
			if !m.options.skipLockError && errors.As(err, &commErr) {
				return nil, fmt.Errorf("failed to acquire lock: %w", err)
			}
			timer.Reset(m.options.retryDelay)
		}
	}
}

// Unlock 停止自動續期並釋放鎖
func (m *AutoRenewMutex) Unlock() (bool, error) {
	m.stopAutoRenew()
	m.wg.Wait()
	return m.Mutex.Unlock()
}

// Valid 檢查鎖是否仍然有效
func (m *AutoRenewMutex) Valid() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.renewing && time.Now().Before(m.Mutex.Until())
}

func (m *AutoRenewMutex) startAutoRenew(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.renewing {
		return
	}

	m.renewing = true
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(m.options.renewInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				success, err := m.Mutex.Extend()
				if err != nil || !success {
					slog.Warn("Lock lost", slog.String("key", m.Mutex.Name()), slog.Any("error", err))
					m.stopAutoRenew()
					return
				}
			}
		}
	}()
}

func (m *AutoRenewMutex) stopAutoRenew() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.renewing {
		return
	}

	m.renewing = false
	if m.cancel != nil {
		m.cancel()
	}
}
