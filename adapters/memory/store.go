package memory

import (
	"context"

	"auctionhouse/auction"
)

// Store 實作 auction.Store
type Store struct {
	session
}

var _ auction.Store = (*Store)(nil)

func NewStore(db *DB) *Store {
	return &Store{session{db: db}}
}

func (s *Store) Listings() auction.ListingRepository {
	return &ListingRepository{s.session}
}

func (s *Store) Categories() auction.CategoryRepository {
	return &CategoryRepository{s.session}
}

func (s *Store) Bids() auction.BidRepository {
	return &BidRepository{s.session}
}

func (s *Store) Watchlist() auction.WatchlistRepository {
	return &WatchlistRepository{s.session}
}

// Transaction 不支援巢狀交易，交易中再次呼叫會直接在同一個交易內執行
func (s *Store) Transaction(ctx context.Context, fn func(tx auction.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	return s.db.transaction(ctx, func() error {
		return fn(&Store{session{db: s.db, inTx: true}})
	})
}
