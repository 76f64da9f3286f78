package memory

import (
	"context"

	"github.com/google/uuid"

	"auctionhouse/auction"
	"auctionhouse/auth"
)

type OTPStore struct {
	session
}

var _ auth.OTPStore = (*OTPStore)(nil)

func NewOTPStore(db *DB) *OTPStore {
	return &OTPStore{session{db: db}}
}

func (s *OTPStore) Save(ctx context.Context, userID uuid.UUID, otp auth.OTP) error {
	return s.write(ctx, func() error {
		s.db.otps[userID] = otp
		return nil
	})
}

func (s *OTPStore) Get(ctx context.Context, userID uuid.UUID) (auth.OTP, error) {
	var (
		otp auth.OTP
		ok  bool
	)
	if err := s.read(ctx, func() { otp, ok = s.db.otps[userID] }); err != nil {
		return auth.OTP{}, err
	}
	if !ok {
		return auth.OTP{}, auction.NotFoundf("otp not found")
	}
	return otp, nil
}

func (s *OTPStore) Delete(ctx context.Context, userID uuid.UUID) error {
	return s.write(ctx, func() error {
		delete(s.db.otps, userID)
		return nil
	})
}
