package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"auctionhouse/auction"
	"auctionhouse/models"
)

// Credentials 是從請求中取出的身分資訊
type Credentials struct {
	// Authorization 是完整的 Authorization header，例如 "Bearer xxx"
	Authorization string
	// GuestID 是訪客身分 header 的值
	GuestID string
}

// Resolver 把請求的身分資訊解析成 auction.Client
type Resolver struct {
	codec  *Codec
	users  UserRepository
	tokens TokenRepository
	guests auction.GuestRepository
}

func NewResolver(codec *Codec, users UserRepository, tokens TokenRepository, guests auction.GuestRepository) *Resolver {
	return &Resolver{codec: codec, users: users, tokens: tokens, guests: guests}
}

// bearerToken 從 Authorization header 取出 token
func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// ResolveUser 解析必須登入的請求
// 除了驗證 token 本身，也要求 token 是使用者目前儲存的那一組，
// 所以登出或重新登入後，舊的 token 即使還沒過期也會失效
func (r *Resolver) ResolveUser(ctx context.Context, creds Credentials) (models.User, error) {
	const op = "ResolveUser"
	if strings.TrimSpace(creds.Authorization) == "" {
		return models.User{}, ErrUnauthorized
	}
	token, ok := bearerToken(creds.Authorization)
	if !ok {
		return models.User{}, ErrInvalidToken
	}
	claims, err := r.codec.VerifyAccessToken(token)
	if err != nil {
		slog.Debug("Reject access token", slog.String("op", op), slog.Any("error", err))
		return models.User{}, ErrInvalidToken
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return models.User{}, ErrInvalidToken
	}
	user, err := r.users.GetByID(ctx, userID)
	if errors.Is(err, auction.ErrNotFound) {
		return models.User{}, ErrInvalidToken
	}
	if err != nil {
		return models.User{}, fmt.Errorf("[%s] Fail to find user, err=%w", op, err)
	}
	pair, err := r.tokens.GetByUserID(ctx, user.ID)
	if errors.Is(err, auction.ErrNotFound) {
		return models.User{}, ErrInvalidToken
	}
	if err != nil {
		return models.User{}, fmt.Errorf("[%s] Fail to find token pair, err=%w", op, err)
	}
	if pair.Access != token {
		return models.User{}, ErrInvalidToken
	}
	return user, nil
}

// ResolveClient 解析公開的請求，永遠不會失敗
//   - 有 Authorization header 時以 ResolveUser 解析，失敗視為 Anonymous
//   - 否則訪客 header 指向存在的訪客時為 GuestUser
//   - 其他情況都是 Anonymous
func (r *Resolver) ResolveClient(ctx context.Context, creds Credentials) auction.Client {
	const op = "ResolveClient"
	if strings.TrimSpace(creds.Authorization) != "" {
		user, err := r.ResolveUser(ctx, creds)
		if err != nil {
			slog.Debug("Fallback to anonymous client", slog.String("op", op), slog.Any("error", err))
			return auction.Anonymous{}
		}
		return AuthenticatedUserOf(user)
	}
	guestID := strings.TrimSpace(creds.GuestID)
	if guestID == "" {
		return auction.Anonymous{}
	}
	exists, err := r.guests.Exists(ctx, guestID)
	if err != nil {
		slog.Warn("Fail to look up guest", slog.String("op", op), slog.Any("error", err))
		return auction.Anonymous{Session: guestID}
	}
	if !exists {
		return auction.Anonymous{Session: guestID}
	}
	return auction.GuestUser{ID: guestID}
}

func AuthenticatedUserOf(user models.User) auction.AuthenticatedUser {
	return auction.AuthenticatedUser{
		ID:              user.ID,
		Email:           user.Email,
		IsEmailVerified: user.IsEmailVerified,
	}
}
