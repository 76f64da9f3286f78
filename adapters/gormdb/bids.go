package gormdb

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"auctionhouse/models"
)

type BidRepository struct {
	db *gorm.DB
}

func (r *BidRepository) ListByListing(ctx context.Context, listingID uuid.UUID, limit int) ([]models.Bid, error) {
	query := r.db.WithContext(ctx).
		Where("listing_id = ?", listingID).
		Order(clause.OrderBy{Columns: []clause.OrderByColumn{
			{Column: clause.Column{Name: "updated_at"}, Desc: true},
			{Column: clause.Column{Name: "amount"}, Desc: true},
		}})
	if limit > 0 {
		query = query.Limit(limit)
	}
	var bids []models.Bid
	if result := query.Find(&bids); result.Error != nil {
		return nil, fmt.Errorf("fail to list bids, err=%w", result.Error)
	}
	return bids, nil
}

func (r *BidRepository) GetByUserAndListing(ctx context.Context, userID, listingID uuid.UUID) (models.Bid, error) {
	var bid models.Bid
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND listing_id = ?", userID, listingID).
		First(&bid)
	if result.Error != nil {
		return models.Bid{}, translate(result.Error, "bid")
	}
	return bid, nil
}

func (r *BidRepository) Create(ctx context.Context, bid *models.Bid) error {
	if result := r.db.WithContext(ctx).Omit(clause.Associations).Create(bid); result.Error != nil {
		return translate(result.Error, "bid")
	}
	return nil
}

func (r *BidRepository) UpdateAmount(ctx context.Context, bid *models.Bid, amount decimal.Decimal) error {
	result := r.db.WithContext(ctx).Model(bid).Update("amount", amount)
	if result.Error != nil {
		return translate(result.Error, "bid")
	}
	bid.Amount = amount
	return nil
}
