package gormdb

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"auctionhouse/auction"
	"auctionhouse/models"
)

type ListingRepository struct {
	db *gorm.DB
}

func (r *ListingRepository) GetByID(ctx context.Context, id uuid.UUID) (models.Listing, error) {
	var listing models.Listing
	if result := r.db.WithContext(ctx).Where("id = ?", id).First(&listing); result.Error != nil {
		return models.Listing{}, translate(result.Error, "listing")
	}
	return listing, nil
}

func (r *ListingRepository) GetBySlug(ctx context.Context, slug string) (models.Listing, error) {
	var listing models.Listing
	if result := r.db.WithContext(ctx).Where("slug = ?", slug).First(&listing); result.Error != nil {
		return models.Listing{}, translate(result.Error, "listing")
	}
	return listing, nil
}

// LockByID 以 SELECT ... FOR UPDATE 鎖定拍賣品，需要在交易中呼叫
func (r *ListingRepository) LockByID(ctx context.Context, id uuid.UUID) (models.Listing, error) {
	var listing models.Listing
	result := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&listing)
	if result.Error != nil {
		return models.Listing{}, translate(result.Error, "listing")
	}
	return listing, nil
}

func (r *ListingRepository) List(ctx context.Context, filter auction.ListingFilter) ([]models.Listing, error) {
	query := r.db.WithContext(ctx).Model(&models.Listing{})
	if filter.AuctioneerID != nil {
		query = query.Where("auctioneer_id = ?", *filter.AuctioneerID)
	}
	if filter.NoCategory {
		query = query.Where("category_id IS NULL")
	} else if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.ExcludeID != nil {
		query = query.Where("id <> ?", *filter.ExcludeID)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	query = query.Order(clause.OrderBy{Columns: []clause.OrderByColumn{
		{Column: clause.Column{Name: "created_at"}, Desc: true},
		{Column: clause.Column{Name: "id"}, Desc: true},
	}})

	var listings []models.Listing
	if result := query.Find(&listings); result.Error != nil {
		return nil, fmt.Errorf("fail to list listings, err=%w", result.Error)
	}
	return listings, nil
}

func (r *ListingRepository) Create(ctx context.Context, listing *models.Listing) error {
	if result := r.db.WithContext(ctx).Omit(clause.Associations).Create(listing); result.Error != nil {
		return translate(result.Error, "listing")
	}
	return nil
}

func (r *ListingRepository) Update(ctx context.Context, listing *models.Listing) error {
	result := r.db.WithContext(ctx).
		Model(listing).
		Select("name", "description", "category_id", "price", "closing_date", "active", "image_url").
		Updates(listing)
	if result.Error != nil {
		return translate(result.Error, "listing")
	}
	if result.RowsAffected == 0 {
		return auction.NotFoundf("listing %s not found", listing.ID)
	}
	return nil
}

type statsRow struct {
	ListingID uuid.UUID
	Highest   decimal.Decimal
	Count     int64
}

func (r *ListingRepository) Stats(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]auction.BidStats, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]auction.BidStats{}, nil
	}
	var rows []statsRow
	result := r.db.WithContext(ctx).
		Model(&models.Bid{}).
		Select("listing_id, MAX(amount) AS highest, COUNT(*) AS count").
		Where("listing_id IN ?", ids).
		Group("listing_id").
		Scan(&rows)
	if result.Error != nil {
		return nil, fmt.Errorf("fail to aggregate bids, err=%w", result.Error)
	}
	return lo.SliceToMap(rows, func(row statsRow) (uuid.UUID, auction.BidStats) {
		return row.ListingID, auction.BidStats{Highest: row.Highest, Count: row.Count}
	}), nil
}
