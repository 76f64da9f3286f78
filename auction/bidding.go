package auction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"auctionhouse/models"
)

// PublicBidsLimit 是公開查詢拍賣品出價時最多回傳的筆數
const PublicBidsLimit = 3

// PlaceBidCommand 是出價請求，金額已經過格式驗證
type PlaceBidCommand struct {
	ListingSlug string
	Amount      decimal.Decimal
}

// BidService 處理出價的驗證與寫入
type BidService struct {
	store  Store
	locker Locker
	now    func() time.Time
}

type BidServiceOption func(*BidService)

// WithBidClock 設定取得目前時間的函數
func WithBidClock(now func() time.Time) BidServiceOption {
	return func(s *BidService) {
		s.now = now
	}
}

func NewBidService(store Store, locker Locker, opts ...BidServiceOption) *BidService {
	s := &BidService{
		store:  store,
		locker: locker,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func bidLockKey(listing models.Listing) string {
	return "listing:" + listing.ID.String() + ":bid"
}

// PlaceBid 依序檢查出價規則，第一個不符合的規則決定回傳的錯誤：
//  1. 拍賣品必須存在
//  2. 出價者不能是拍賣品的擁有者
//  3. 拍賣品必須仍在進行中
//  4. 金額不能低於底價
//  5. 金額必須高於目前最高出價
//
// 通過後更新使用者既有的出價，或建立新的出價。
// 3 到 5 的檢查與寫入在同一個拍賣品的鎖與交易中完成，不同拍賣品之間互不影響。
func (s *BidService) PlaceBid(ctx context.Context, bidder AuthenticatedUser, cmd PlaceBidCommand) (models.Bid, error) {
	const op = "PlaceBid"
	listing, err := s.listingBySlug(ctx, cmd.ListingSlug)
	if err != nil {
		return models.Bid{}, err
	}
	if bidder.ID == listing.AuctioneerID {
		return models.Bid{}, newError(KindForbidden, "You cannot bid your own product!")
	}

	lockCtx, unlock, err := s.locker.Lock(ctx, bidLockKey(listing))
	if err != nil {
		return models.Bid{}, fmt.Errorf("[%s] Fail to acquire bid lock, err=%w", op, err)
	}
	defer unlock()

	var bid models.Bid
	err = s.store.Transaction(lockCtx, func(tx Store) error {
		// 取得鎖之後重新讀取，避免使用到鎖外讀到的舊狀態
		current, err := tx.Listings().LockByID(lockCtx, listing.ID)
		if err != nil {
			return fmt.Errorf("fail to lock listing, err=%w", err)
		}
		stats, err := tx.Listings().Stats(lockCtx, []uuid.UUID{current.ID})
		if err != nil {
			return fmt.Errorf("fail to load bid stats, err=%w", err)
		}
		state := Calculate(current, stats[current.ID], s.now())
		if err := checkBid(current, state, cmd.Amount); err != nil {
			return err
		}

		existing, err := tx.Bids().GetByUserAndListing(lockCtx, bidder.ID, current.ID)
		switch {
		case err == nil:
			if err := tx.Bids().UpdateAmount(lockCtx, &existing, cmd.Amount); err != nil {
				return fmt.Errorf("fail to update bid, err=%w", err)
			}
			bid = existing
		case errors.Is(err, ErrNotFound):
			bid = models.Bid{
				UserID:    bidder.ID,
				ListingID: current.ID,
				Amount:    cmd.Amount,
			}
			if err := tx.Bids().Create(lockCtx, &bid); err != nil {
				return fmt.Errorf("fail to create bid, err=%w", err)
			}
		default:
			return fmt.Errorf("fail to find existing bid, err=%w", err)
		}
		return nil
	})
	var domainErr *Error
	if errors.As(err, &domainErr) && domainErr.Kind != KindInternal {
		return models.Bid{}, err
	}
	if err != nil {
		return models.Bid{}, fmt.Errorf("[%s] Fail to place bid, err=%w", op, err)
	}
	slog.Info("Bid accepted", slog.String("listing", listing.Slug), slog.String("user", bidder.ID.String()), slog.String("amount", bid.Amount.StringFixed(2)))
	return bid, nil
}

func checkBid(listing models.Listing, state State, amount decimal.Decimal) error {
	if !listing.Active {
		return newError(KindClosed, "This auction is closed!")
	}
	if !state.Active {
		return newError(KindClosed, "This auction is expired and closed!")
	}
	if amount.LessThan(listing.Price) {
		return newError(KindInvalidAmount, "Bid amount cannot be less than the bidding price!")
	}
	if amount.LessThanOrEqual(state.HighestBid) {
		return newError(KindInvalidAmount, "Bid amount must be more than the highest bid!")
	}
	return nil
}

func (s *BidService) listingBySlug(ctx context.Context, slug string) (models.Listing, error) {
	listing, err := s.store.Listings().GetBySlug(ctx, slug)
	if errors.Is(err, ErrNotFound) {
		return models.Listing{}, newError(KindNotFound, "Listing does not exist!")
	}
	if err != nil {
		return models.Listing{}, fmt.Errorf("fail to find listing, err=%w", err)
	}
	return listing, nil
}

// ListBids 列出拍賣品最新的出價，limit <= 0 代表全部
func (s *BidService) ListBids(ctx context.Context, slug string, limit int) (models.Listing, []models.Bid, error) {
	const op = "ListBids"
	listing, err := s.listingBySlug(ctx, slug)
	if err != nil {
		return models.Listing{}, nil, err
	}
	bids, err := s.store.Bids().ListByListing(ctx, listing.ID, limit)
	if err != nil {
		return models.Listing{}, nil, fmt.Errorf("[%s] Fail to list bids, err=%w", op, err)
	}
	return listing, bids, nil
}

// ListOwnListingBids 列出拍賣品的所有出價，只有拍賣品擁有者可以查詢
func (s *BidService) ListOwnListingBids(ctx context.Context, owner AuthenticatedUser, slug string) (models.Listing, []models.Bid, error) {
	const op = "ListOwnListingBids"
	listing, err := s.listingBySlug(ctx, slug)
	if err != nil {
		return models.Listing{}, nil, err
	}
	if listing.AuctioneerID != owner.ID {
		return models.Listing{}, nil, newError(KindForbidden, "This listing doesn't belong to you!")
	}
	bids, err := s.store.Bids().ListByListing(ctx, listing.ID, 0)
	if err != nil {
		return models.Listing{}, nil, fmt.Errorf("[%s] Fail to list bids, err=%w", op, err)
	}
	return listing, bids, nil
}
