package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"auctionhouse/auction"
	"auctionhouse/auth"
	"auctionhouse/models"
)

type UserRepository struct {
	session
}

var _ auth.UserRepository = (*UserRepository)(nil)

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{session{db: db}}
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	var (
		user models.User
		ok   bool
	)
	if err := r.read(ctx, func() { user, ok = r.db.users[id] }); err != nil {
		return models.User{}, err
	}
	if !ok {
		return models.User{}, auction.NotFoundf("user %s not found", id)
	}
	return user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var (
		user models.User
		ok   bool
	)
	if err := r.read(ctx, func() {
		user, ok = lo.Find(lo.Values(r.db.users), func(u models.User) bool { return u.Email == email })
	}); err != nil {
		return models.User{}, err
	}
	if !ok {
		return models.User{}, auction.NotFoundf("user %s not found", email)
	}
	return user, nil
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if err := user.BeforeCreate(nil); err != nil {
		return err
	}
	return r.write(ctx, func() error {
		for _, u := range r.db.users {
			if u.Email == user.Email {
				return auction.Conflictf("email %s already exists", user.Email)
			}
		}
		now := r.db.now()
		user.CreatedAt, user.UpdatedAt = now, now
		r.db.users[user.ID] = *user
		return nil
	})
}

func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	return r.write(ctx, func() error {
		old, ok := r.db.users[user.ID]
		if !ok {
			return auction.NotFoundf("user %s not found", user.ID)
		}
		for _, u := range r.db.users {
			if u.ID != user.ID && u.Email == user.Email {
				return auction.Conflictf("email %s already exists", user.Email)
			}
		}
		user.CreatedAt = old.CreatedAt
		user.UpdatedAt = r.db.now()
		r.db.users[user.ID] = *user
		return nil
	})
}
