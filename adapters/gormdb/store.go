package gormdb

import (
	"context"

	"gorm.io/gorm"

	"auctionhouse/auction"
)

// Store 實作 auction.Store，交易中的 Store 持有交易的 *gorm.DB
type Store struct {
	db *gorm.DB
}

var _ auction.Store = (*Store)(nil)

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Listings() auction.ListingRepository {
	return &ListingRepository{db: s.db}
}

func (s *Store) Categories() auction.CategoryRepository {
	return &CategoryRepository{db: s.db}
}

func (s *Store) Bids() auction.BidRepository {
	return &BidRepository{db: s.db}
}

func (s *Store) Watchlist() auction.WatchlistRepository {
	return &WatchlistRepository{db: s.db}
}

func (s *Store) Transaction(ctx context.Context, fn func(tx auction.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}
