package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"auctionhouse/auction"
	"auctionhouse/auth"
	"auctionhouse/models"
)

// TokenRepository 以 UserID 為 key 保存每個使用者唯一的 token
type TokenRepository struct {
	session
}

var _ auth.TokenRepository = (*TokenRepository)(nil)

func NewTokenRepository(db *DB) *TokenRepository {
	return &TokenRepository{session{db: db}}
}

func (r *TokenRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (models.TokenPair, error) {
	var (
		pair models.TokenPair
		ok   bool
	)
	if err := r.read(ctx, func() { pair, ok = r.db.tokens[userID] }); err != nil {
		return models.TokenPair{}, err
	}
	if !ok {
		return models.TokenPair{}, auction.NotFoundf("token pair not found")
	}
	return pair, nil
}

func (r *TokenRepository) GetByRefresh(ctx context.Context, refresh string) (models.TokenPair, error) {
	var (
		pair models.TokenPair
		ok   bool
	)
	if err := r.read(ctx, func() {
		pair, ok = lo.Find(lo.Values(r.db.tokens), func(p models.TokenPair) bool { return p.Refresh == refresh })
	}); err != nil {
		return models.TokenPair{}, err
	}
	if !ok {
		return models.TokenPair{}, auction.NotFoundf("refresh token not found")
	}
	return pair, nil
}

func (r *TokenRepository) Replace(ctx context.Context, pair *models.TokenPair) error {
	pair.ID = uuid.Nil
	if err := pair.BeforeCreate(nil); err != nil {
		return err
	}
	return r.write(ctx, func() error {
		now := r.db.now()
		pair.CreatedAt, pair.UpdatedAt = now, now
		r.db.tokens[pair.UserID] = *pair
		return nil
	})
}

func (r *TokenRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	return r.write(ctx, func() error {
		if _, ok := r.db.tokens[userID]; !ok {
			return auction.NotFoundf("token pair not found")
		}
		delete(r.db.tokens, userID)
		return nil
	})
}
