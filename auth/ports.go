//go:generate mockgen -package=auth -destination=mock.go -source=ports.go

package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"auctionhouse/models"
)

// UserRepository 查詢與儲存使用者，找不到時回傳 auction.ErrNotFound 分類的錯誤
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
}

// TokenRepository 管理每個使用者唯一的一組 token
type TokenRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (models.TokenPair, error)
	GetByRefresh(ctx context.Context, refresh string) (models.TokenPair, error)
	// Replace 原子性地刪除使用者舊的 token 並寫入新的
	Replace(ctx context.Context, pair *models.TokenPair) error
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}

// OTP 是 email 驗證碼
type OTP struct {
	Code      string
	ExpiresAt time.Time
}

// OTPStore 儲存每個使用者目前的驗證碼
type OTPStore interface {
	Save(ctx context.Context, userID uuid.UUID, otp OTP) error
	Get(ctx context.Context, userID uuid.UUID) (OTP, error)
	Delete(ctx context.Context, userID uuid.UUID) error
}

// Mailer 寄送通知信
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}
