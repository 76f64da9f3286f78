package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"auctionhouse/auction"
	"auctionhouse/models"
)

// TokenPair 是回傳給客戶端的一組 token
type TokenPair struct {
	Access  string
	Refresh string
}

// SessionManager 管理使用者的 token 生命週期
// 每個使用者同時只有一組有效的 token，登入與刷新都會整組替換
type SessionManager struct {
	codec      *Codec
	tokens     TokenRepository
	locker     auction.Locker
	accessTTL  time.Duration
	refreshTTL time.Duration
}

type SessionManagerOption func(*SessionManager)

func WithAccessTTL(ttl time.Duration) SessionManagerOption {
	return func(m *SessionManager) {
		m.accessTTL = ttl
	}
}

func WithRefreshTTL(ttl time.Duration) SessionManagerOption {
	return func(m *SessionManager) {
		m.refreshTTL = ttl
	}
}

func NewSessionManager(codec *Codec, tokens TokenRepository, locker auction.Locker, opts ...SessionManagerOption) *SessionManager {
	m := &SessionManager{
		codec:      codec,
		tokens:     tokens,
		locker:     locker,
		accessTTL:  30 * time.Minute,
		refreshTTL: 24 * time.Hour,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func userLockKey(userID uuid.UUID) string {
	return "user:" + userID.String() + ":tokens"
}

func (m *SessionManager) issue(userID uuid.UUID) (TokenPair, error) {
	access, err := m.codec.IssueAccessToken(userID, m.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := m.codec.IssueRefreshToken(m.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

// Login 為使用者簽發新的 token，之前的 token 立即失效
func (m *SessionManager) Login(ctx context.Context, user models.User) (TokenPair, error) {
	const op = "Login"
	lockCtx, unlock, err := m.locker.Lock(ctx, userLockKey(user.ID))
	if err != nil {
		return TokenPair{}, fmt.Errorf("[%s] Fail to acquire token lock, err=%w", op, err)
	}
	defer unlock()

	pair, err := m.issue(user.ID)
	if err != nil {
		return TokenPair{}, fmt.Errorf("[%s] Fail to issue tokens, err=%w", op, err)
	}
	if err := m.tokens.Replace(lockCtx, &models.TokenPair{UserID: user.ID, Access: pair.Access, Refresh: pair.Refresh}); err != nil {
		return TokenPair{}, fmt.Errorf("[%s] Fail to store tokens, err=%w", op, err)
	}
	return pair, nil
}

// Refresh 以儲存中的 refresh token 換一組新的 token
// 已經被替換掉的 refresh token 即使簽章有效也會失敗
func (m *SessionManager) Refresh(ctx context.Context, refresh string) (TokenPair, error) {
	const op = "Refresh"
	stored, err := m.tokens.GetByRefresh(ctx, refresh)
	if errors.Is(err, auction.ErrNotFound) {
		return TokenPair{}, ErrRefreshNotFound
	}
	if err != nil {
		return TokenPair{}, fmt.Errorf("[%s] Fail to find refresh token, err=%w", op, err)
	}
	if err := m.codec.VerifyRefreshToken(refresh); err != nil {
		return TokenPair{}, ErrRefreshInvalid
	}

	lockCtx, unlock, err := m.locker.Lock(ctx, userLockKey(stored.UserID))
	if err != nil {
		return TokenPair{}, fmt.Errorf("[%s] Fail to acquire token lock, err=%w", op, err)
	}
	defer unlock()

	// 取得鎖之後再確認一次，避免同一個 refresh token 被同時使用兩次
	current, err := m.tokens.GetByUserID(lockCtx, stored.UserID)
	if errors.Is(err, auction.ErrNotFound) || (err == nil && current.Refresh != refresh) {
		return TokenPair{}, ErrRefreshNotFound
	}
	if err != nil {
		return TokenPair{}, fmt.Errorf("[%s] Fail to find token pair, err=%w", op, err)
	}

	pair, err := m.issue(stored.UserID)
	if err != nil {
		return TokenPair{}, fmt.Errorf("[%s] Fail to issue tokens, err=%w", op, err)
	}
	if err := m.tokens.Replace(lockCtx, &models.TokenPair{UserID: stored.UserID, Access: pair.Access, Refresh: pair.Refresh}); err != nil {
		return TokenPair{}, fmt.Errorf("[%s] Fail to store tokens, err=%w", op, err)
	}
	return pair, nil
}

// Logout 刪除使用者的 token，之後的請求都無法通過 ResolveUser
func (m *SessionManager) Logout(ctx context.Context, userID uuid.UUID) error {
	const op = "Logout"
	lockCtx, unlock, err := m.locker.Lock(ctx, userLockKey(userID))
	if err != nil {
		return fmt.Errorf("[%s] Fail to acquire token lock, err=%w", op, err)
	}
	defer unlock()

	if err := m.tokens.DeleteByUserID(lockCtx, userID); err != nil && !errors.Is(err, auction.ErrNotFound) {
		return fmt.Errorf("[%s] Fail to delete tokens, err=%w", op, err)
	}
	return nil
}
