package auction_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"auctionhouse/adapters/memory"
	"auctionhouse/auction"
	"auctionhouse/models"
)

var baseTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	db       *memory.DB
	store    *memory.Store
	guests   *memory.GuestRepository
	locker   *memory.Locker
	now      time.Time
	bids     *auction.BidService
	listings *auction.ListingService
	watch    *auction.WatchlistService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{now: baseTime}
	clock := func() time.Time { return f.now }
	f.db = memory.NewDB(memory.WithClock(clock))
	f.store = memory.NewStore(f.db)
	f.guests = memory.NewGuestRepository(f.db, 0)
	f.locker = memory.NewLocker()
	f.bids = auction.NewBidService(f.store, f.locker, auction.WithBidClock(clock))
	f.listings = auction.NewListingService(f.store, auction.WithListingClock(clock))
	f.watch = auction.NewWatchlistService(f.store, f.guests, f.locker)
	return f
}

func newUser() auction.AuthenticatedUser {
	return auction.AuthenticatedUser{ID: uuid.New(), Email: uuid.NewString() + "@example.com", IsEmailVerified: true}
}

func (f *fixture) listing(t *testing.T, owner auction.AuthenticatedUser, slug string, price int64, mutate ...func(*models.Listing)) models.Listing {
	t.Helper()
	listing := models.Listing{
		AuctioneerID: owner.ID,
		Name:         slug,
		Slug:         slug,
		Description:  "desc",
		Price:        decimal.NewFromInt(price),
		ClosingDate:  f.now.Add(24 * time.Hour),
		Active:       true,
	}
	for _, m := range mutate {
		m(&listing)
	}
	require.NoError(t, f.store.Listings().Create(context.Background(), &listing))
	return listing
}

func amount(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}
