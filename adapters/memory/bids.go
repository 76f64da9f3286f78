package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"auctionhouse/auction"
	"auctionhouse/models"
)

type BidRepository struct {
	session
}

func (r *BidRepository) ListByListing(ctx context.Context, listingID uuid.UUID, limit int) ([]models.Bid, error) {
	var bids []models.Bid
	err := r.read(ctx, func() {
		bids = lo.Filter(lo.Values(r.db.bids), func(b models.Bid, _ int) bool { return b.ListingID == listingID })
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(bids, func(i, j int) bool {
		if bids[i].UpdatedAt.Equal(bids[j].UpdatedAt) {
			return bids[i].Amount.GreaterThan(bids[j].Amount)
		}
		return bids[i].UpdatedAt.After(bids[j].UpdatedAt)
	})
	if limit > 0 && len(bids) > limit {
		bids = bids[:limit]
	}
	return bids, nil
}

func (r *BidRepository) GetByUserAndListing(ctx context.Context, userID, listingID uuid.UUID) (models.Bid, error) {
	var (
		bid models.Bid
		ok  bool
	)
	if err := r.read(ctx, func() {
		bid, ok = lo.Find(lo.Values(r.db.bids), func(b models.Bid) bool {
			return b.UserID == userID && b.ListingID == listingID
		})
	}); err != nil {
		return models.Bid{}, err
	}
	if !ok {
		return models.Bid{}, auction.NotFoundf("bid not found")
	}
	return bid, nil
}

func (r *BidRepository) Create(ctx context.Context, bid *models.Bid) error {
	if err := bid.BeforeCreate(nil); err != nil {
		return err
	}
	return r.write(ctx, func() error {
		if err := r.checkUnique(bid.ID, bid.UserID, bid.ListingID, bid.Amount); err != nil {
			return err
		}
		now := r.db.now()
		bid.CreatedAt, bid.UpdatedAt = now, now
		r.db.bids[bid.ID] = *bid
		return nil
	})
}

func (r *BidRepository) UpdateAmount(ctx context.Context, bid *models.Bid, amount decimal.Decimal) error {
	return r.write(ctx, func() error {
		stored, ok := r.db.bids[bid.ID]
		if !ok {
			return auction.NotFoundf("bid %s not found", bid.ID)
		}
		if err := r.checkUnique(stored.ID, stored.UserID, stored.ListingID, amount); err != nil {
			return err
		}
		stored.Amount = amount
		stored.UpdatedAt = r.db.now()
		r.db.bids[stored.ID] = stored
		*bid = stored
		return nil
	})
}

// checkUnique 檢查 (user, listing) 與 (listing, amount) 的唯一性，呼叫者需持有 mu
func (r *BidRepository) checkUnique(id, userID, listingID uuid.UUID, amount decimal.Decimal) error {
	for _, b := range r.db.bids {
		if b.ID == id || b.ListingID != listingID {
			continue
		}
		if b.UserID == userID {
			return auction.Conflictf("user already has a bid on this listing")
		}
		if b.Amount.Equal(amount) {
			return auction.Conflictf("a bid with the same amount already exists")
		}
	}
	return nil
}
