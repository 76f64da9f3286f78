package auction

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"auctionhouse/models"
)

// ListingFilter 是列出拍賣品時的篩選條件，零值代表不篩選
type ListingFilter struct {
	AuctioneerID *uuid.UUID
	CategoryID   *uuid.UUID
	// NoCategory 只列出沒有分類的拍賣品("other")
	NoCategory bool
	ExcludeID  *uuid.UUID
	Limit      int
}

type ListingRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (models.Listing, error)
	GetBySlug(ctx context.Context, slug string) (models.Listing, error)
	// LockByID 讀取拍賣品並在交易結束前鎖定該列
	LockByID(ctx context.Context, id uuid.UUID) (models.Listing, error)
	List(ctx context.Context, filter ListingFilter) ([]models.Listing, error)
	Create(ctx context.Context, listing *models.Listing) error
	Update(ctx context.Context, listing *models.Listing) error
	// Stats 回傳每個拍賣品的最高出價與出價數量，沒有出價的拍賣品不會出現在結果中
	Stats(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]BidStats, error)
}

type CategoryRepository interface {
	List(ctx context.Context) ([]models.Category, error)
	GetBySlug(ctx context.Context, slug string) (models.Category, error)
	Create(ctx context.Context, category *models.Category) error
}

type BidRepository interface {
	// ListByListing 依照建立時間由新到舊列出出價，limit <= 0 代表不限制
	ListByListing(ctx context.Context, listingID uuid.UUID, limit int) ([]models.Bid, error)
	GetByUserAndListing(ctx context.Context, userID, listingID uuid.UUID) (models.Bid, error)
	Create(ctx context.Context, bid *models.Bid) error
	UpdateAmount(ctx context.Context, bid *models.Bid, amount decimal.Decimal) error
}

type WatchlistRepository interface {
	Find(ctx context.Context, owner Owner, listingID uuid.UUID) (models.WatchlistEntry, error)
	ListByOwner(ctx context.Context, owner Owner) ([]models.WatchlistEntry, error)
	Create(ctx context.Context, entry *models.WatchlistEntry) error
	Delete(ctx context.Context, id uuid.UUID) error
	// DeleteByOwner 刪除 owner 的所有紀錄並回傳刪除的筆數
	DeleteByOwner(ctx context.Context, owner Owner) (int64, error)
	// GuestSessionKeys 列出所有仍有紀錄的訪客身分
	GuestSessionKeys(ctx context.Context) ([]string, error)
}

// Store 聚合核心邏輯使用的儲存庫
// Transaction 內的 fn 取得的 Store 所有操作都在同一個交易中，fn 回傳錯誤時整體回滾
type Store interface {
	Listings() ListingRepository
	Categories() CategoryRepository
	Bids() BidRepository
	Watchlist() WatchlistRepository
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

// GuestRepository 管理匿名訪客的身分
type GuestRepository interface {
	Create(ctx context.Context) (string, error)
	Exists(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
}

// Locker 提供以 key 區分的互斥鎖
// 回傳的 context 在鎖失效時會被取消，unlock 必須被呼叫且可重複呼叫
type Locker interface {
	Lock(ctx context.Context, key string) (context.Context, func(), error)
}
