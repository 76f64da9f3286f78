package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"

	"auctionhouse/auction"
	"auctionhouse/models"
)

type RegisterCommand struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

type UpdateProfileCommand struct {
	FirstName *string
	LastName  *string
	AvatarURL *string
}

// AccountService 處理註冊、email 驗證、帳號密碼驗證與個人資料
type AccountService struct {
	users  UserRepository
	otps   OTPStore
	mailer Mailer
	otpTTL time.Duration
	now    func() time.Time
}

type AccountServiceOption func(*AccountService)

func WithOTPTTL(ttl time.Duration) AccountServiceOption {
	return func(s *AccountService) {
		s.otpTTL = ttl
	}
}

func WithAccountClock(now func() time.Time) AccountServiceOption {
	return func(s *AccountService) {
		s.now = now
	}
}

func NewAccountService(users UserRepository, otps OTPStore, mailer Mailer, opts ...AccountServiceOption) *AccountService {
	s := &AccountService{
		users:  users,
		otps:   otps,
		mailer: mailer,
		otpTTL: 15 * time.Minute,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register 建立尚未驗證 email 的使用者並寄出驗證碼
func (s *AccountService) Register(ctx context.Context, cmd RegisterCommand) (models.User, error) {
	const op = "Register"
	email := normalizeEmail(cmd.Email)
	if email == "" || cmd.Password == "" {
		return models.User{}, &auction.Error{Kind: auction.KindInvalidInput, Message: "Email and password are required"}
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return models.User{}, ErrEmailTaken
	} else if !errors.Is(err, auction.ErrNotFound) {
		return models.User{}, fmt.Errorf("[%s] Fail to find user, err=%w", op, err)
	}
	hash, err := HashPassword(cmd.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("[%s] %w", op, err)
	}
	user := models.User{
		FirstName:    strings.TrimSpace(cmd.FirstName),
		LastName:     strings.TrimSpace(cmd.LastName),
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		if errors.Is(err, auction.ErrConflict) {
			return models.User{}, ErrEmailTaken
		}
		return models.User{}, fmt.Errorf("[%s] Fail to create user, err=%w", op, err)
	}
	if err := s.sendOTP(ctx, user); err != nil {
		// 使用者已建立，驗證碼可以重新寄送
		slog.Error("Fail to send verification email", slog.String("op", op), slog.Any("error", err))
	}
	return user, nil
}

// VerifyEmail 以驗證碼驗證 email，已驗證過的使用者直接回傳 true
func (s *AccountService) VerifyEmail(ctx context.Context, email, code string) (alreadyVerified bool, err error) {
	const op = "VerifyEmail"
	user, err := s.userByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	if user.IsEmailVerified {
		return true, nil
	}
	otp, err := s.otps.Get(ctx, user.ID)
	if errors.Is(err, auction.ErrNotFound) {
		return false, ErrIncorrectOTP
	}
	if err != nil {
		return false, fmt.Errorf("[%s] Fail to load otp, err=%w", op, err)
	}
	if otp.Code != strings.TrimSpace(code) {
		return false, ErrIncorrectOTP
	}
	if s.now().After(otp.ExpiresAt) {
		return false, ErrExpiredOTP
	}
	user.IsEmailVerified = true
	if err := s.users.Update(ctx, &user); err != nil {
		return false, fmt.Errorf("[%s] Fail to update user, err=%w", op, err)
	}
	if err := s.otps.Delete(ctx, user.ID); err != nil {
		slog.Warn("Fail to delete otp", slog.String("op", op), slog.Any("error", err))
	}
	if err := s.mailer.Send(ctx, user.Email, "Account verified", "Welcome, "+user.FullName()+"!"); err != nil {
		slog.Warn("Fail to send welcome email", slog.String("op", op), slog.Any("error", err))
	}
	return false, nil
}

// ResendVerification 重新寄送驗證碼，已驗證過的使用者直接回傳 true
func (s *AccountService) ResendVerification(ctx context.Context, email string) (alreadyVerified bool, err error) {
	const op = "ResendVerification"
	user, err := s.userByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	if user.IsEmailVerified {
		return true, nil
	}
	if err := s.sendOTP(ctx, user); err != nil {
		return false, fmt.Errorf("[%s] %w", op, err)
	}
	return false, nil
}

// Authenticate 驗證帳號密碼，email 未驗證的使用者無法登入
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	const op = "Authenticate"
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, auction.ErrNotFound) {
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, fmt.Errorf("[%s] Fail to find user, err=%w", op, err)
	}
	ok, err := CheckPassword(user.PasswordHash, password)
	if err != nil {
		return models.User{}, fmt.Errorf("[%s] %w", op, err)
	}
	if !ok {
		return models.User{}, ErrInvalidCredentials
	}
	if !user.IsEmailVerified {
		return models.User{}, ErrEmailNotVerified
	}
	return user, nil
}

func (s *AccountService) Profile(ctx context.Context, userID uuid.UUID) (models.User, error) {
	const op = "Profile"
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return models.User{}, fmt.Errorf("[%s] Fail to find user, err=%w", op, err)
	}
	return user, nil
}

func (s *AccountService) UpdateProfile(ctx context.Context, userID uuid.UUID, cmd UpdateProfileCommand) (models.User, error) {
	const op = "UpdateProfile"
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return models.User{}, err
	}
	if cmd.FirstName != nil && strings.TrimSpace(*cmd.FirstName) != "" {
		user.FirstName = strings.TrimSpace(*cmd.FirstName)
	}
	if cmd.LastName != nil && strings.TrimSpace(*cmd.LastName) != "" {
		user.LastName = strings.TrimSpace(*cmd.LastName)
	}
	if cmd.AvatarURL != nil && *cmd.AvatarURL != "" {
		user.AvatarURL = *cmd.AvatarURL
	}
	if err := s.users.Update(ctx, &user); err != nil {
		return models.User{}, fmt.Errorf("[%s] Fail to update user, err=%w", op, err)
	}
	return user, nil
}

func (s *AccountService) userByEmail(ctx context.Context, email string) (models.User, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, auction.ErrNotFound) {
		return models.User{}, ErrIncorrectEmail
	}
	if err != nil {
		return models.User{}, fmt.Errorf("fail to find user, err=%w", err)
	}
	return user, nil
}

func (s *AccountService) sendOTP(ctx context.Context, user models.User) error {
	code, err := generateOTP()
	if err != nil {
		return err
	}
	otp := OTP{Code: code, ExpiresAt: s.now().Add(s.otpTTL)}
	if err := s.otps.Save(ctx, user.ID, otp); err != nil {
		return fmt.Errorf("fail to save otp, err=%w", err)
	}
	body := fmt.Sprintf("Hi %s, your verification code is %s. It expires in %s.", user.FullName(), code, s.otpTTL)
	if err := s.mailer.Send(ctx, user.Email, "Verify your email", body); err != nil {
		return fmt.Errorf("fail to send otp, err=%w", err)
	}
	return nil
}

// generateOTP 產生 6 位數的驗證碼
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("fail to generate otp, err=%w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// LogMailer 只把信件內容寫進日誌，用於沒有設定寄信服務的環境
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, to, subject, body string) error {
	slog.InfoContext(ctx, "Send email", slog.String("to", to), slog.String("subject", subject), slog.String("body", body))
	return nil
}
