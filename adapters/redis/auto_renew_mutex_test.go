package redis

import (
	"context"
	"testing"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const testLockKey = "auction:lock:listing:1:bid"

func assertDone(t *testing.T, ctx context.Context) {
	t.Helper()
	select {
	case <-ctx.Done():
	case <-time.After(500 * time.Millisecond):
		t.Error("lock context was not cancelled")
	}
}

func TestAutoRenewMutex_Lock(t *testing.T) {
	t.Run("取得鎖後解鎖", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		client, mock, cleanup := setupTest(t)
		defer cleanup()

		mock.Regexp().ExpectSetNX(testLockKey, ".*", 8*time.Second).SetVal(true)
		mock.Regexp().ExpectEvalSha(".*", []string{testLockKey}, []string{".*"}).SetVal(int64(1))

		mutex := NewAutoRenewMutex(newRedsync(client), testLockKey)
		assert.False(t, mutex.Valid())
		lockCtx, err := mutex.Lock(context.Background())
		require.NoError(t, err)
		assert.True(t, mutex.Valid())

		ok, err := mutex.Unlock()
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.False(t, mutex.Valid())
		assertDone(t, lockCtx)
	})

	t.Run("context 已取消", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		client, _, cleanup := setupTest(t)
		defer cleanup()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		lockCtx, err := NewAutoRenewMutex(newRedsync(client), testLockKey).Lock(ctx)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Nil(t, lockCtx)
	})

	t.Run("Redis 錯誤直接回傳", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		client, mock, cleanup := setupTest(t)
		defer cleanup()

		mock.Regexp().ExpectSetNX(testLockKey, ".*", 8*time.Second).SetErr(redis.ErrClosed)

		lockCtx, err := NewAutoRenewMutex(newRedsync(client), testLockKey).Lock(context.Background())
		assert.ErrorIs(t, err, redis.ErrClosed)
		assert.Nil(t, lockCtx)
	})

	t.Run("忽略 Redis 錯誤時重試到逾時", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		client, mock, cleanup := setupTest(t)
		defer cleanup()

		mock.Regexp().ExpectSetNX(testLockKey, ".*", 8*time.Second).SetErr(redis.ErrClosed)
		ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
		defer cancel()

		lockCtx, err := NewAutoRenewMutex(newRedsync(client), testLockKey, WithLockSkipError(true)).Lock(ctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Nil(t, lockCtx)
	})

	t.Run("鎖被佔用時等待到逾時", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		client, mock, cleanup := setupTest(t)
		defer cleanup()

		mock.Regexp().ExpectSetNX(testLockKey, ".*", 8*time.Second).SetVal(false)
		mock.Regexp().ExpectEvalSha(".*", []string{testLockKey}, []string{".*"}).SetVal(int64(0))

		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()
		lockCtx, err := NewAutoRenewMutex(newRedsync(client), testLockKey, WithLockRetryDelay(time.Second)).Lock(ctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Nil(t, lockCtx)
	})
}

func TestAutoRenewMutex_Renew(t *testing.T) {
	t.Run("持續續期", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		client, mock, cleanup := setupTest(t)
		defer cleanup()

		mock.Regexp().ExpectSetNX(testLockKey, ".*", 2*time.Second).SetVal(true)
		mock.Regexp().ExpectEvalSha(".*", []string{testLockKey}, []string{".*", "2000"}).SetVal(int64(1))
		mock.Regexp().ExpectEvalSha(".*", []string{testLockKey}, []string{".*", "2000"}).SetVal(int64(1))
		mock.Regexp().ExpectEvalSha(".*", []string{testLockKey}, []string{".*"}).SetVal(int64(1))

		mutex := NewAutoRenewMutex(newRedsync(client), testLockKey,
			WithLockExpiry(2*time.Second),
			WithLockRenewInterval(100*time.Millisecond))
		lockCtx, err := mutex.Lock(context.Background())
		require.NoError(t, err)

		time.Sleep(250 * time.Millisecond)
		assert.True(t, mutex.Valid())
		assert.NoError(t, lockCtx.Err())

		ok, err := mutex.Unlock()
		assert.NoError(t, err)
		assert.True(t, ok)
		assertDone(t, lockCtx)
	})

	t.Run("續期失敗時取消 context", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		client, mock, cleanup := setupTest(t)
		defer cleanup()

		mock.Regexp().ExpectSetNX(testLockKey, ".*", 2*time.Second).SetVal(true)
		mock.Regexp().ExpectEvalSha(".*", []string{testLockKey}, []string{".*", "2000"}).SetErr(redis.ErrClosed)
		mock.Regexp().ExpectEvalSha(".*", []string{testLockKey}, []string{".*"}).SetVal(int64(-1))

		mutex := NewAutoRenewMutex(newRedsync(client), testLockKey,
			WithLockExpiry(2*time.Second),
			WithLockRenewInterval(100*time.Millisecond))
		lockCtx, err := mutex.Lock(context.Background())
		require.NoError(t, err)

		// 持有者在 Unlock 之前就會看到 context 被取消
		assertDone(t, lockCtx)
		time.Sleep(50 * time.Millisecond)
		assert.False(t, mutex.Valid())

		ok, err := mutex.Unlock()
		assert.ErrorIs(t, err, redsync.ErrLockAlreadyExpired)
		assert.False(t, ok)
	})
}
