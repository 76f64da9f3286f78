package memory

import (
	"context"

	"auctionhouse/auction"
	"auctionhouse/general"
	"auctionhouse/models"
)

type SiteDetailRepository struct {
	session
}

var _ general.SiteDetailRepository = (*SiteDetailRepository)(nil)

func NewSiteDetailRepository(db *DB) *SiteDetailRepository {
	return &SiteDetailRepository{session: session{db: db}}
}

func (r *SiteDetailRepository) Get(ctx context.Context) (models.SiteDetail, error) {
	var (
		detail models.SiteDetail
		ok     bool
	)
	if err := r.read(ctx, func() {
		if ok = r.db.siteDetail != nil; ok {
			detail = *r.db.siteDetail
		}
	}); err != nil {
		return models.SiteDetail{}, err
	}
	if !ok {
		return models.SiteDetail{}, auction.NotFoundf("site detail not found")
	}
	return detail, nil
}

// Create 只保留第一筆網站資訊
func (r *SiteDetailRepository) Create(ctx context.Context, detail *models.SiteDetail) error {
	if err := detail.BeforeCreate(nil); err != nil {
		return err
	}
	return r.write(ctx, func() error {
		if r.db.siteDetail != nil {
			return auction.Conflictf("site detail already exists")
		}
		now := r.db.now()
		detail.CreatedAt, detail.UpdatedAt = now, now
		stored := *detail
		r.db.siteDetail = &stored
		return nil
	})
}

type SubscriberRepository struct {
	session
}

var _ general.SubscriberRepository = (*SubscriberRepository)(nil)

func NewSubscriberRepository(db *DB) *SubscriberRepository {
	return &SubscriberRepository{session: session{db: db}}
}

func (r *SubscriberRepository) GetByEmail(ctx context.Context, email string) (models.Subscriber, error) {
	var (
		subscriber models.Subscriber
		ok         bool
	)
	if err := r.read(ctx, func() { subscriber, ok = r.db.subscribers[email] }); err != nil {
		return models.Subscriber{}, err
	}
	if !ok {
		return models.Subscriber{}, auction.NotFoundf("subscriber %s not found", email)
	}
	return subscriber, nil
}

func (r *SubscriberRepository) Create(ctx context.Context, subscriber *models.Subscriber) error {
	if err := subscriber.BeforeCreate(nil); err != nil {
		return err
	}
	return r.write(ctx, func() error {
		if _, ok := r.db.subscribers[subscriber.Email]; ok {
			return auction.Conflictf("subscriber %s already exists", subscriber.Email)
		}
		subscriber.CreatedAt = r.db.now()
		r.db.subscribers[subscriber.Email] = *subscriber
		return nil
	})
}
