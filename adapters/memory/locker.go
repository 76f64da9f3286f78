package memory

import (
	"context"
	"sync"

	"auctionhouse/auction"
)

type lockEntry struct {
	ch   chan struct{}
	refs int
}

// Locker 是單一程序內以 key 區分的互斥鎖，等待時會尊重 ctx 的取消
type Locker struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

var _ auction.Locker = (*Locker)(nil)

func NewLocker() *Locker {
	return &Locker{locks: make(map[string]*lockEntry)}
}

func (l *Locker) acquire(key string) *lockEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.locks[key]
	if !ok {
		entry = &lockEntry{ch: make(chan struct{}, 1)}
		l.locks[key] = entry
	}
	entry.refs++
	return entry
}

func (l *Locker) release(key string, entry *lockEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry.refs--
	if entry.refs == 0 {
		delete(l.locks, key)
	}
}

func (l *Locker) Lock(ctx context.Context, key string) (context.Context, func(), error) {
	entry := l.acquire(key)
	select {
	case entry.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, entry)
		return nil, nil, ctx.Err()
	}

	lockCtx, cancel := context.WithCancel(ctx)
	var once sync.Once
	unlock := func() {
		once.Do(func() {
			cancel()
			<-entry.ch
			l.release(key, entry)
		})
	}
	return lockCtx, unlock, nil
}

// Len 回傳目前被持有或等待中的 key 數量
func (l *Locker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
