package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"auctionhouse/auction"
)

// GuestRepository 保存訪客身分，ttl 為 0 時永不過期
type GuestRepository struct {
	session
	ttl time.Duration
}

var _ auction.GuestRepository = (*GuestRepository)(nil)

func NewGuestRepository(db *DB, ttl time.Duration) *GuestRepository {
	return &GuestRepository{session: session{db: db}, ttl: ttl}
}

func (r *GuestRepository) Create(ctx context.Context) (string, error) {
	id := uuid.NewString()
	err := r.write(ctx, func() error {
		var expiresAt time.Time
		if r.ttl > 0 {
			expiresAt = r.db.now().Add(r.ttl)
		}
		r.db.guests[id] = expiresAt
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *GuestRepository) Exists(ctx context.Context, id string) (bool, error) {
	var (
		expiresAt time.Time
		ok        bool
	)
	if err := r.read(ctx, func() { expiresAt, ok = r.db.guests[id] }); err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	return expiresAt.IsZero() || r.db.now().Before(expiresAt), nil
}

func (r *GuestRepository) Delete(ctx context.Context, id string) error {
	return r.write(ctx, func() error {
		delete(r.db.guests, id)
		return nil
	})
}
