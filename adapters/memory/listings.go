package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"auctionhouse/auction"
	"auctionhouse/models"
)

type ListingRepository struct {
	session
}

func (r *ListingRepository) GetByID(ctx context.Context, id uuid.UUID) (models.Listing, error) {
	var (
		listing models.Listing
		ok      bool
	)
	if err := r.read(ctx, func() { listing, ok = r.db.listings[id] }); err != nil {
		return models.Listing{}, err
	}
	if !ok {
		return models.Listing{}, auction.NotFoundf("listing %s not found", id)
	}
	return listing, nil
}

func (r *ListingRepository) GetBySlug(ctx context.Context, slug string) (models.Listing, error) {
	var (
		listing models.Listing
		ok      bool
	)
	if err := r.read(ctx, func() {
		listing, ok = lo.Find(lo.Values(r.db.listings), func(l models.Listing) bool { return l.Slug == slug })
	}); err != nil {
		return models.Listing{}, err
	}
	if !ok {
		return models.Listing{}, auction.NotFoundf("listing %s not found", slug)
	}
	return listing, nil
}

// LockByID 在記憶體中等同 GetByID，互斥由交易的 txMu 保證
func (r *ListingRepository) LockByID(ctx context.Context, id uuid.UUID) (models.Listing, error) {
	return r.GetByID(ctx, id)
}

func (r *ListingRepository) List(ctx context.Context, filter auction.ListingFilter) ([]models.Listing, error) {
	var listings []models.Listing
	err := r.read(ctx, func() {
		listings = lo.Filter(lo.Values(r.db.listings), func(l models.Listing, _ int) bool {
			switch {
			case filter.AuctioneerID != nil && l.AuctioneerID != *filter.AuctioneerID:
				return false
			case filter.NoCategory && l.CategoryID != nil:
				return false
			case filter.CategoryID != nil && (l.CategoryID == nil || *l.CategoryID != *filter.CategoryID):
				return false
			case filter.ExcludeID != nil && l.ID == *filter.ExcludeID:
				return false
			}
			return true
		})
	})
	if err != nil {
		return nil, err
	}
	// 新建立的在前
	sort.Slice(listings, func(i, j int) bool {
		if listings[i].CreatedAt.Equal(listings[j].CreatedAt) {
			return listings[i].ID.String() > listings[j].ID.String()
		}
		return listings[i].CreatedAt.After(listings[j].CreatedAt)
	})
	if filter.Limit > 0 && len(listings) > filter.Limit {
		listings = listings[:filter.Limit]
	}
	return listings, nil
}

func (r *ListingRepository) Create(ctx context.Context, listing *models.Listing) error {
	if err := listing.BeforeCreate(nil); err != nil {
		return err
	}
	return r.write(ctx, func() error {
		for _, l := range r.db.listings {
			if l.Slug == listing.Slug {
				return auction.Conflictf("listing slug %s already exists", listing.Slug)
			}
		}
		now := r.db.now()
		listing.CreatedAt, listing.UpdatedAt = now, now
		r.db.listings[listing.ID] = *listing
		return nil
	})
}

func (r *ListingRepository) Update(ctx context.Context, listing *models.Listing) error {
	return r.write(ctx, func() error {
		old, ok := r.db.listings[listing.ID]
		if !ok {
			return auction.NotFoundf("listing %s not found", listing.ID)
		}
		for _, l := range r.db.listings {
			if l.ID != listing.ID && l.Slug == listing.Slug {
				return auction.Conflictf("listing slug %s already exists", listing.Slug)
			}
		}
		listing.CreatedAt = old.CreatedAt
		listing.UpdatedAt = r.db.now()
		r.db.listings[listing.ID] = *listing
		return nil
	})
}

func (r *ListingRepository) Stats(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]auction.BidStats, error) {
	grouped := make(map[uuid.UUID][]models.Bid, len(ids))
	err := r.read(ctx, func() {
		for _, bid := range r.db.bids {
			if lo.Contains(ids, bid.ListingID) {
				grouped[bid.ListingID] = append(grouped[bid.ListingID], bid)
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return lo.MapValues(grouped, func(bids []models.Bid, _ uuid.UUID) auction.BidStats {
		return auction.StatsOf(bids)
	}), nil
}
