package gormdb

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"auctionhouse/auction"
	"auctionhouse/auth"
	"auctionhouse/models"
)

type TokenRepository struct {
	db *gorm.DB
}

var _ auth.TokenRepository = (*TokenRepository)(nil)

func NewTokenRepository(db *gorm.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (models.TokenPair, error) {
	var pair models.TokenPair
	if result := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&pair); result.Error != nil {
		return models.TokenPair{}, translate(result.Error, "token pair")
	}
	return pair, nil
}

func (r *TokenRepository) GetByRefresh(ctx context.Context, refresh string) (models.TokenPair, error) {
	var pair models.TokenPair
	if result := r.db.WithContext(ctx).Where("refresh = ?", refresh).First(&pair); result.Error != nil {
		return models.TokenPair{}, translate(result.Error, "refresh token")
	}
	return pair, nil
}

// Replace 在同一個交易中刪除舊的 token 並寫入新的
func (r *TokenRepository) Replace(ctx context.Context, pair *models.TokenPair) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if result := tx.Where("user_id = ?", pair.UserID).Delete(&models.TokenPair{}); result.Error != nil {
			return fmt.Errorf("fail to delete token pair, err=%w", result.Error)
		}
		pair.ID = uuid.Nil
		if result := tx.Omit(clause.Associations).Create(pair); result.Error != nil {
			return translate(result.Error, "token pair")
		}
		return nil
	})
}

func (r *TokenRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.TokenPair{})
	if result.Error != nil {
		return fmt.Errorf("fail to delete token pair, err=%w", result.Error)
	}
	if result.RowsAffected == 0 {
		return auction.NotFoundf("token pair not found")
	}
	return nil
}
