// Package general 提供網站資訊與電子報訂閱
package general

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"auctionhouse/auction"
	"auctionhouse/models"
)

type SiteDetailRepository interface {
	// Get 回傳最早建立的一筆網站資訊，沒有資料時回傳 auction.ErrNotFound
	Get(ctx context.Context) (models.SiteDetail, error)
	Create(ctx context.Context, detail *models.SiteDetail) error
}

type SubscriberRepository interface {
	GetByEmail(ctx context.Context, email string) (models.Subscriber, error)
	Create(ctx context.Context, subscriber *models.Subscriber) error
}

// DefaultSiteDetail 是第一次讀取網站資訊時寫入的內容
func DefaultSiteDetail() models.SiteDetail {
	return models.SiteDetail{
		Name:      "Auction House",
		Email:     "support@auctionhouse.local",
		Phone:     "+0000000000",
		Address:   "Auction House HQ",
		Facebook:  "https://facebook.com",
		Twitter:   "https://twitter.com",
		WhatsApp:  "https://wa.me",
		Instagram: "https://instagram.com",
	}
}

type Service struct {
	details     SiteDetailRepository
	subscribers SubscriberRepository
	locker      auction.Locker
	defaults    models.SiteDetail
}

type Option func(*Service)

// WithSiteDefaults 設定網站資訊不存在時建立的預設值
func WithSiteDefaults(detail models.SiteDetail) Option {
	return func(s *Service) {
		s.defaults = detail
	}
}

func NewService(details SiteDetailRepository, subscribers SubscriberRepository, locker auction.Locker, opts ...Option) *Service {
	s := &Service{
		details:     details,
		subscribers: subscribers,
		locker:      locker,
		defaults:    DefaultSiteDetail(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SiteDetail 讀取網站資訊，不存在時以預設值建立
func (s *Service) SiteDetail(ctx context.Context) (models.SiteDetail, error) {
	const op = "SiteDetail"
	detail, err := s.details.Get(ctx)
	if err == nil {
		return detail, nil
	}
	if !errors.Is(err, auction.ErrNotFound) {
		return models.SiteDetail{}, fmt.Errorf("[%s] Fail to get site detail, err=%w", op, err)
	}

	lockCtx, unlock, err := s.locker.Lock(ctx, "general:site-detail")
	if err != nil {
		return models.SiteDetail{}, fmt.Errorf("[%s] Fail to acquire site detail lock, err=%w", op, err)
	}
	defer unlock()
	// 等鎖的期間可能已經被其他請求建立
	detail, err = s.details.Get(lockCtx)
	if err == nil {
		return detail, nil
	}
	if !errors.Is(err, auction.ErrNotFound) {
		return models.SiteDetail{}, fmt.Errorf("[%s] Fail to get site detail, err=%w", op, err)
	}
	detail = s.defaults
	if err := s.details.Create(lockCtx, &detail); err != nil {
		return models.SiteDetail{}, fmt.Errorf("[%s] Fail to create site detail, err=%w", op, err)
	}
	slog.Info("Site detail created with defaults")
	return detail, nil
}

// Subscribe 新增電子報訂閱者，已經訂閱的 email 直接回傳原本的紀錄
func (s *Service) Subscribe(ctx context.Context, email string) (models.Subscriber, error) {
	const op = "Subscribe"
	email = strings.ToLower(strings.TrimSpace(email))
	subscriber, err := s.subscribers.GetByEmail(ctx, email)
	if err == nil {
		return subscriber, nil
	}
	if !errors.Is(err, auction.ErrNotFound) {
		return models.Subscriber{}, fmt.Errorf("[%s] Fail to get subscriber, err=%w", op, err)
	}

	subscriber = models.Subscriber{Email: email}
	err = s.subscribers.Create(ctx, &subscriber)
	if errors.Is(err, auction.ErrConflict) {
		// 同時送出的訂閱已經寫入
		return s.subscribers.GetByEmail(ctx, email)
	}
	if err != nil {
		return models.Subscriber{}, fmt.Errorf("[%s] Fail to create subscriber, err=%w", op, err)
	}
	return subscriber, nil
}
