// Package memory 提供以記憶體實作的儲存庫，用於開發模式與測試
package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"

	"auctionhouse/auth"
	"auctionhouse/models"
)

// DB 保存所有資料表的內容
// mu 保護 map 的讀寫；txMu 讓寫入操作與交易互斥，交易失敗時以快照還原
type DB struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	now  func() time.Time

	users      map[uuid.UUID]models.User
	categories map[uuid.UUID]models.Category
	listings   map[uuid.UUID]models.Listing
	bids       map[uuid.UUID]models.Bid
	watchlist  map[uuid.UUID]models.WatchlistEntry
	tokens     map[uuid.UUID]models.TokenPair // key 是 UserID
	images     map[uuid.UUID]models.Image
	guests     map[string]time.Time
	otps       map[uuid.UUID]auth.OTP

	siteDetail  *models.SiteDetail
	subscribers map[string]models.Subscriber // key 是 email
}

type DBOption func(*DB)

// WithClock 設定寫入時間戳記使用的時鐘
func WithClock(now func() time.Time) DBOption {
	return func(db *DB) {
		db.now = now
	}
}

func NewDB(opts ...DBOption) *DB {
	db := &DB{
		now:        time.Now,
		users:      make(map[uuid.UUID]models.User),
		categories: make(map[uuid.UUID]models.Category),
		listings:   make(map[uuid.UUID]models.Listing),
		bids:       make(map[uuid.UUID]models.Bid),
		watchlist:  make(map[uuid.UUID]models.WatchlistEntry),
		tokens:     make(map[uuid.UUID]models.TokenPair),
		images:     make(map[uuid.UUID]models.Image),
		guests:     make(map[string]time.Time),
		otps:       make(map[uuid.UUID]auth.OTP),

		subscribers: make(map[string]models.Subscriber),
	}
	for _, opt := range opts {
		opt(db)
	}
	return db
}

type snapshot struct {
	users      map[uuid.UUID]models.User
	categories map[uuid.UUID]models.Category
	listings   map[uuid.UUID]models.Listing
	bids       map[uuid.UUID]models.Bid
	watchlist  map[uuid.UUID]models.WatchlistEntry
	tokens     map[uuid.UUID]models.TokenPair
}

func (db *DB) snapshot() snapshot {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return snapshot{
		users:      maps.Clone(db.users),
		categories: maps.Clone(db.categories),
		listings:   maps.Clone(db.listings),
		bids:       maps.Clone(db.bids),
		watchlist:  maps.Clone(db.watchlist),
		tokens:     maps.Clone(db.tokens),
	}
}

func (db *DB) restore(s snapshot) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.users = s.users
	db.categories = s.categories
	db.listings = s.listings
	db.bids = s.bids
	db.watchlist = s.watchlist
	db.tokens = s.tokens
}

// transaction 在 txMu 保護下執行 fn，fn 回傳錯誤或 panic 時還原所有資料表
func (db *DB) transaction(ctx context.Context, fn func() error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	db.txMu.Lock()
	defer db.txMu.Unlock()

	snap := db.snapshot()
	defer func() {
		if r := recover(); r != nil {
			db.restore(snap)
			panic(r)
		}
		if err != nil {
			db.restore(snap)
		}
	}()
	if err = fn(); err != nil {
		return err
	}
	// 交易中途被取消時不提交
	return ctx.Err()
}

// session 記錄目前的操作是否在交易中，交易中的寫入不再取得 txMu
type session struct {
	db   *DB
	inTx bool
}

// write 執行一個寫入操作
func (s session) write(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !s.inTx {
		s.db.txMu.Lock()
		defer s.db.txMu.Unlock()
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return fn()
}

// read 執行一個讀取操作
func (s session) read(ctx context.Context, fn func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	fn()
	return nil
}
