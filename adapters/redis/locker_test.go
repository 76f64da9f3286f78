package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocker(t *testing.T) {
	t.Run("同一個 key 互斥", func(t *testing.T) {
		mr, client := setupMiniredis(t)
		locker := NewLocker(client, "auction:", WithLockRetryDelay(5*time.Millisecond))

		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			running int
			maxSeen int
		)
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_, unlock, err := locker.Lock(ctx, "listing:1:bid")
				if !assert.NoError(t, err) {
					return
				}
				defer unlock()
				mu.Lock()
				running++
				maxSeen = max(maxSeen, running)
				mu.Unlock()
				time.Sleep(10 * time.Millisecond)
				mu.Lock()
				running--
				mu.Unlock()
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, maxSeen)
		assert.False(t, mr.Exists("auction:lock:listing:1:bid"))
	})

	t.Run("被佔用時等待逾時", func(t *testing.T) {
		_, client := setupMiniredis(t)
		locker := NewLocker(client, "auction:", WithLockRetryDelay(5*time.Millisecond))

		_, unlock, err := locker.Lock(context.Background(), "user:1:tokens")
		require.NoError(t, err)
		defer unlock()

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		_, _, err = locker.Lock(ctx, "user:1:tokens")
		assert.ErrorIs(t, err, context.DeadlineExceeded)

		// 不同的 key 不受影響
		_, unlockOther, err := locker.Lock(context.Background(), "user:2:tokens")
		require.NoError(t, err)
		unlockOther()
		unlockOther()
	})
}
