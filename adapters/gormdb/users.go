package gormdb

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"auctionhouse/auction"
	"auctionhouse/auth"
	"auctionhouse/models"
)

type UserRepository struct {
	db *gorm.DB
}

var _ auth.UserRepository = (*UserRepository)(nil)

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	var user models.User
	if result := r.db.WithContext(ctx).Where("id = ?", id).First(&user); result.Error != nil {
		return models.User{}, translate(result.Error, "user")
	}
	return user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	if result := r.db.WithContext(ctx).Where("email = ?", email).First(&user); result.Error != nil {
		return models.User{}, translate(result.Error, "user")
	}
	return user, nil
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if result := r.db.WithContext(ctx).Create(user); result.Error != nil {
		return translate(result.Error, "user")
	}
	return nil
}

func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	result := r.db.WithContext(ctx).
		Model(user).
		Select("first_name", "last_name", "email", "password_hash", "is_email_verified", "avatar_url").
		Updates(user)
	if result.Error != nil {
		return translate(result.Error, "user")
	}
	if result.RowsAffected == 0 {
		return auction.NotFoundf("user %s not found", user.ID)
	}
	return nil
}
