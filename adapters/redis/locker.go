package redis

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"

	"auctionhouse/auction"
)

// Locker 以 Redis 實作 auction.Locker，多個服務實例之間也能互斥
type Locker struct {
	prefix   string
	newMutex func(name string) IAutoRenewMutex
}

var _ auction.Locker = (*Locker)(nil)

func NewLocker(client redis.UniversalClient, prefix string, opts ...LockOption) *Locker {
	rs := redsync.New(goredis.NewPool(client))
	options := newLockOptions(opts...)
	return &Locker{
		prefix: prefix,
		newMutex: func(name string) IAutoRenewMutex {
			return newAutoRenewMutex(rs, name, options)
		},
	}
}

func (l *Locker) Lock(ctx context.Context, key string) (context.Context, func(), error) {
	mutex := l.newMutex(l.prefix + "lock:" + key)
	lockCtx, err := mutex.Lock(ctx)
	if err != nil {
		return nil, nil, err
	}
	var once sync.Once
	unlock := func() {
		once.Do(func() {
			// 鎖已經過期不影響已完成的工作，只記錄下來
			if _, err := mutex.Unlock(); err != nil && !errors.Is(err, redsync.ErrLockAlreadyExpired) {
				slog.Error("Fail to release lock", slog.String("key", key), slog.Any("error", err))
			}
		})
	}
	return lockCtx, unlock, nil
}
