package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"auctionhouse/auction"
	"auctionhouse/auth"
)

type otpRecord struct {
	Code      string    `msgpack:"code"`
	ExpiresAt time.Time `msgpack:"expires_at"`
}

// OTPStore 把 email 驗證碼存在 Redis
// key 會比驗證碼多保留 retention，讓過期的驗證碼仍然可以被辨識為過期而不是錯誤
type OTPStore struct {
	client    redis.UniversalClient
	prefix    string
	retention time.Duration
}

var _ auth.OTPStore = (*OTPStore)(nil)

func NewOTPStore(client redis.UniversalClient, prefix string, retention time.Duration) *OTPStore {
	return &OTPStore{client: client, prefix: prefix, retention: retention}
}

func (s *OTPStore) key(userID uuid.UUID) string {
	return s.prefix + "otp:" + userID.String()
}

func (s *OTPStore) Save(ctx context.Context, userID uuid.UUID, otp auth.OTP) error {
	const op = "OTPStore.Save"
	data, err := encode(otpRecord{Code: otp.Code, ExpiresAt: otp.ExpiresAt.UTC()})
	if err != nil {
		return fmt.Errorf("[%s] %w", op, err)
	}
	ttl := time.Until(otp.ExpiresAt) + s.retention
	if ttl < time.Second {
		ttl = time.Second
	}
	if err := s.client.Set(ctx, s.key(userID), data, ttl).Err(); err != nil {
		return fmt.Errorf("[%s] Fail to save otp, err=%w", op, err)
	}
	return nil
}

func (s *OTPStore) Get(ctx context.Context, userID uuid.UUID) (auth.OTP, error) {
	const op = "OTPStore.Get"
	data, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return auth.OTP{}, auction.NotFoundf("otp not found")
	}
	if err != nil {
		return auth.OTP{}, fmt.Errorf("[%s] Fail to load otp, err=%w", op, err)
	}
	record, err := decode[otpRecord](data)
	if err != nil {
		return auth.OTP{}, fmt.Errorf("[%s] %w", op, err)
	}
	return auth.OTP{Code: record.Code, ExpiresAt: record.ExpiresAt}, nil
}

func (s *OTPStore) Delete(ctx context.Context, userID uuid.UUID) error {
	const op = "OTPStore.Delete"
	if err := s.client.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("[%s] Fail to delete otp, err=%w", op, err)
	}
	return nil
}
