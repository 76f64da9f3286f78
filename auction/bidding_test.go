package auction_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auctionhouse/auction"
	"auctionhouse/models"
)

func TestBidService_PlaceBid_Scenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner, alice, bob := newUser(), newUser(), newUser()
	listing := f.listing(t, owner, "camera", 100)

	steps := []struct {
		name    string
		bidder  auction.AuthenticatedUser
		amount  int64
		wantErr error
		wantMsg string
	}{
		{name: "低於底價", bidder: alice, amount: 90, wantErr: auction.ErrInvalidAmount, wantMsg: "Bid amount cannot be less than the bidding price!"},
		{name: "第一筆出價", bidder: alice, amount: 150},
		{name: "低於最高出價", bidder: bob, amount: 120, wantErr: auction.ErrInvalidAmount, wantMsg: "Bid amount must be more than the highest bid!"},
		{name: "高於最高出價", bidder: bob, amount: 200},
		{name: "等於最高出價", bidder: alice, amount: 200, wantErr: auction.ErrInvalidAmount, wantMsg: "Bid amount must be more than the highest bid!"},
		{name: "擁有者出價", bidder: owner, amount: 500, wantErr: auction.ErrForbidden, wantMsg: "You cannot bid your own product!"},
	}
	for _, step := range steps {
		t.Run(step.name, func(t *testing.T) {
			bid, err := f.bids.PlaceBid(ctx, step.bidder, auction.PlaceBidCommand{ListingSlug: listing.Slug, Amount: amount(step.amount)})
			if step.wantErr != nil {
				assert.ErrorIs(t, err, step.wantErr)
				assert.EqualError(t, err, step.wantMsg)
				return
			}
			require.NoError(t, err)
			assert.True(t, bid.Amount.Equal(amount(step.amount)))
			assert.Equal(t, step.bidder.ID, bid.UserID)
		})
	}

	view, _, err := f.listings.Detail(ctx, auction.Anonymous{}, listing.Slug)
	require.NoError(t, err)
	assert.True(t, view.State.HighestBid.Equal(amount(200)))
	assert.EqualValues(t, 2, view.State.BidsCount)
}

func TestBidService_PlaceBid_UpdatesExistingBid(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner, alice := newUser(), newUser()
	listing := f.listing(t, owner, "camera", 100)

	first, err := f.bids.PlaceBid(ctx, alice, auction.PlaceBidCommand{ListingSlug: listing.Slug, Amount: amount(150)})
	require.NoError(t, err)
	f.now = f.now.Add(time.Minute)
	second, err := f.bids.PlaceBid(ctx, alice, auction.PlaceBidCommand{ListingSlug: listing.Slug, Amount: amount(300)})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.Amount.Equal(amount(300)))
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))

	bids, err := f.store.Bids().ListByListing(ctx, listing.ID, 0)
	require.NoError(t, err)
	require.Len(t, bids, 1)
	assert.True(t, bids[0].Amount.Equal(amount(300)))

	// 自己降價也受最高出價規則限制
	_, err = f.bids.PlaceBid(ctx, alice, auction.PlaceBidCommand{ListingSlug: listing.Slug, Amount: amount(250)})
	assert.ErrorIs(t, err, auction.ErrInvalidAmount)
}

func TestBidService_PlaceBid_Rejections(t *testing.T) {
	ctx := context.Background()
	owner, bidder := newUser(), newUser()

	tests := []struct {
		name    string
		mutate  func(*models.Listing)
		slug    string
		wantErr error
		wantMsg string
	}{
		{
			name:    "拍賣品不存在",
			slug:    "missing",
			wantErr: auction.ErrNotFound,
			wantMsg: "Listing does not exist!",
		},
		{
			name:    "手動關閉",
			mutate:  func(l *models.Listing) { l.Active = false },
			wantErr: auction.ErrClosed,
			wantMsg: "This auction is closed!",
		},
		{
			name:    "已過期",
			mutate:  func(l *models.Listing) { l.ClosingDate = baseTime.Add(-time.Second) },
			wantErr: auction.ErrClosed,
			wantMsg: "This auction is expired and closed!",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			var mutate []func(*models.Listing)
			if tt.mutate != nil {
				mutate = append(mutate, tt.mutate)
			}
			listing := f.listing(t, owner, "camera", 100, mutate...)
			slug := listing.Slug
			if tt.slug != "" {
				slug = tt.slug
			}

			_, err := f.bids.PlaceBid(ctx, bidder, auction.PlaceBidCommand{ListingSlug: slug, Amount: amount(1000)})
			assert.ErrorIs(t, err, tt.wantErr)
			assert.EqualError(t, err, tt.wantMsg)

			bids, err := f.store.Bids().ListByListing(ctx, listing.ID, 0)
			require.NoError(t, err)
			assert.Empty(t, bids)
		})
	}
}

func TestBidService_PlaceBid_Cancelled(t *testing.T) {
	f := newFixture(t)
	owner, bidder := newUser(), newUser()
	listing := f.listing(t, owner, "camera", 100)

	// 先佔住拍賣品的鎖，讓出價在等待時逾時
	_, unlock, err := f.locker.Lock(context.Background(), "listing:"+listing.ID.String()+":bid")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = f.bids.PlaceBid(ctx, bidder, auction.PlaceBidCommand{ListingSlug: listing.Slug, Amount: amount(150)})
	require.Error(t, err)
	assert.Equal(t, auction.KindTransient, auction.KindOf(err))
}

func TestBidService_PlaceBid_Concurrent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := newUser()
	listing := f.listing(t, owner, "camera", 100)

	const n = 30
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted []decimal.Decimal
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			bidder := newUser()
			bid, err := f.bids.PlaceBid(ctx, bidder, auction.PlaceBidCommand{ListingSlug: listing.Slug, Amount: amount(int64(100 + i))})
			if err != nil {
				assert.ErrorIs(t, err, auction.ErrInvalidAmount)
				return
			}
			mu.Lock()
			accepted = append(accepted, bid.Amount)
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	require.NotEmpty(t, accepted)
	bids, err := f.store.Bids().ListByListing(ctx, listing.ID, 0)
	require.NoError(t, err)
	assert.Len(t, bids, len(accepted))

	// 最高金額的出價一定會被接受
	highest := decimal.Max(accepted[0], accepted[1:]...)
	assert.True(t, highest.Equal(amount(100+n-1)))
	stats, err := f.store.Listings().Stats(ctx, []uuid.UUID{listing.ID})
	require.NoError(t, err)
	assert.True(t, stats[listing.ID].Highest.Equal(highest))
	assert.EqualValues(t, len(accepted), stats[listing.ID].Count)
}

func TestBidService_ListBids(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner, stranger := newUser(), newUser()
	listing := f.listing(t, owner, "camera", 100)

	for i := 0; i < 5; i++ {
		f.now = f.now.Add(time.Minute)
		_, err := f.bids.PlaceBid(ctx, newUser(), auction.PlaceBidCommand{ListingSlug: listing.Slug, Amount: amount(int64(200 + i*10))})
		require.NoError(t, err)
	}

	t.Run("公開查詢只取最新幾筆", func(t *testing.T) {
		_, bids, err := f.bids.ListBids(ctx, listing.Slug, auction.PublicBidsLimit)
		require.NoError(t, err)
		require.Len(t, bids, auction.PublicBidsLimit)
		assert.True(t, bids[0].Amount.Equal(amount(240)))
		assert.True(t, bids[2].Amount.Equal(amount(220)))
	})

	t.Run("擁有者查詢全部", func(t *testing.T) {
		_, bids, err := f.bids.ListOwnListingBids(ctx, owner, listing.Slug)
		require.NoError(t, err)
		assert.Len(t, bids, 5)
	})

	t.Run("非擁有者", func(t *testing.T) {
		_, _, err := f.bids.ListOwnListingBids(ctx, stranger, listing.Slug)
		assert.ErrorIs(t, err, auction.ErrForbidden)
	})

	t.Run("拍賣品不存在", func(t *testing.T) {
		_, _, err := f.bids.ListBids(ctx, "missing", 0)
		assert.ErrorIs(t, err, auction.ErrNotFound)
	})
}
