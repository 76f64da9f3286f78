package gormdb

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"auctionhouse/auction"
	"auctionhouse/models"
)

type WatchlistRepository struct {
	db *gorm.DB
}

func ownerScope(owner auction.Owner) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if owner.UserID != nil {
			return db.Where("user_id = ?", *owner.UserID)
		}
		return db.Where("session_key = ?", owner.SessionKey)
	}
}

func (r *WatchlistRepository) Find(ctx context.Context, owner auction.Owner, listingID uuid.UUID) (models.WatchlistEntry, error) {
	var entry models.WatchlistEntry
	result := r.db.WithContext(ctx).
		Scopes(ownerScope(owner)).
		Where("listing_id = ?", listingID).
		First(&entry)
	if result.Error != nil {
		return models.WatchlistEntry{}, translate(result.Error, "watchlist entry")
	}
	return entry, nil
}

func (r *WatchlistRepository) ListByOwner(ctx context.Context, owner auction.Owner) ([]models.WatchlistEntry, error) {
	var entries []models.WatchlistEntry
	result := r.db.WithContext(ctx).
		Scopes(ownerScope(owner)).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "created_at"}, Desc: true}).
		Find(&entries)
	if result.Error != nil {
		return nil, fmt.Errorf("fail to list watchlist, err=%w", result.Error)
	}
	return entries, nil
}

func (r *WatchlistRepository) Create(ctx context.Context, entry *models.WatchlistEntry) error {
	if result := r.db.WithContext(ctx).Omit(clause.Associations).Create(entry); result.Error != nil {
		return translate(result.Error, "watchlist entry")
	}
	return nil
}

func (r *WatchlistRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.WatchlistEntry{})
	if result.Error != nil {
		return fmt.Errorf("fail to delete watchlist entry, err=%w", result.Error)
	}
	if result.RowsAffected == 0 {
		return auction.NotFoundf("watchlist entry %s not found", id)
	}
	return nil
}

func (r *WatchlistRepository) DeleteByOwner(ctx context.Context, owner auction.Owner) (int64, error) {
	result := r.db.WithContext(ctx).Scopes(ownerScope(owner)).Delete(&models.WatchlistEntry{})
	if result.Error != nil {
		return 0, fmt.Errorf("fail to delete watchlist of %s, err=%w", owner, result.Error)
	}
	return result.RowsAffected, nil
}

func (r *WatchlistRepository) GuestSessionKeys(ctx context.Context) ([]string, error) {
	var keys []string
	result := r.db.WithContext(ctx).
		Model(&models.WatchlistEntry{}).
		Where("session_key IS NOT NULL").
		Distinct().
		Pluck("session_key", &keys)
	if result.Error != nil {
		return nil, fmt.Errorf("fail to list guest session keys, err=%w", result.Error)
	}
	return keys, nil
}
