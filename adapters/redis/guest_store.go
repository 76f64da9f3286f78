package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"auctionhouse/auction"
)

type guestRecord struct {
	ID        string    `msgpack:"id"`
	CreatedAt time.Time `msgpack:"created_at"`
}

// GuestStore 把訪客身分存在 Redis，超過 ttl 沒有登入的訪客自動消失
type GuestStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

var _ auction.GuestRepository = (*GuestStore)(nil)

func NewGuestStore(client redis.UniversalClient, prefix string, ttl time.Duration) *GuestStore {
	return &GuestStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *GuestStore) key(id string) string {
	return s.prefix + "guest:" + id
}

func (s *GuestStore) Create(ctx context.Context) (string, error) {
	const op = "GuestStore.Create"
	record := guestRecord{ID: uuid.NewString(), CreatedAt: time.Now().UTC()}
	data, err := encode(record)
	if err != nil {
		return "", fmt.Errorf("[%s] %w", op, err)
	}
	ok, err := s.client.SetNX(ctx, s.key(record.ID), data, s.ttl).Result()
	if err != nil {
		return "", fmt.Errorf("[%s] Fail to save guest, err=%w", op, err)
	}
	if !ok {
		return "", auction.Conflictf("guest %s already exists", record.ID)
	}
	return record.ID, nil
}

func (s *GuestStore) Exists(ctx context.Context, id string) (bool, error) {
	const op = "GuestStore.Exists"
	n, err := s.client.Exists(ctx, s.key(id)).Result()
	if err != nil {
		return false, fmt.Errorf("[%s] Fail to check guest, err=%w", op, err)
	}
	return n > 0, nil
}

func (s *GuestStore) Delete(ctx context.Context, id string) error {
	const op = "GuestStore.Delete"
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("[%s] Fail to delete guest, err=%w", op, err)
	}
	return nil
}
