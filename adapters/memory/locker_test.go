package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestLocker_Lock(t *testing.T) {
	t.Run("同一個 key 互斥", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		locker := NewLocker()

		var (
			mu      sync.Mutex
			running int
			maxSeen int
			wg      sync.WaitGroup
		)
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, unlock, err := locker.Lock(context.Background(), "listing:1")
				if !assert.NoError(t, err) {
					return
				}
				defer unlock()

				mu.Lock()
				running++
				maxSeen = max(maxSeen, running)
				mu.Unlock()
				time.Sleep(time.Millisecond)
				mu.Lock()
				running--
				mu.Unlock()
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, maxSeen)
		assert.Equal(t, 0, locker.Len())
	})

	t.Run("不同 key 不互相阻擋", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		locker := NewLocker()

		_, unlockA, err := locker.Lock(context.Background(), "a")
		require.NoError(t, err)
		defer unlockA()

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()
		_, unlockB, err := locker.Lock(ctx, "b")
		require.NoError(t, err)
		unlockB()
	})

	t.Run("等待中被取消", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		locker := NewLocker()

		_, unlock, err := locker.Lock(context.Background(), "a")
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		lockCtx, _, err := locker.Lock(ctx, "a")
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Nil(t, lockCtx)

		unlock()
		assert.Equal(t, 0, locker.Len())
	})

	t.Run("解鎖後 context 被取消且可重複解鎖", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		locker := NewLocker()

		lockCtx, unlock, err := locker.Lock(context.Background(), "a")
		require.NoError(t, err)
		unlock()
		unlock()

		select {
		case <-lockCtx.Done():
		case <-time.After(100 * time.Millisecond):
			t.Error("lock context was not cancelled after unlock")
		}
	})
}
