package gormdb

import (
	"context"

	"gorm.io/gorm"

	"auctionhouse/general"
	"auctionhouse/models"
)

type SiteDetailRepository struct {
	db *gorm.DB
}

var _ general.SiteDetailRepository = (*SiteDetailRepository)(nil)

func NewSiteDetailRepository(db *gorm.DB) *SiteDetailRepository {
	return &SiteDetailRepository{db: db}
}

func (r *SiteDetailRepository) Get(ctx context.Context) (models.SiteDetail, error) {
	var detail models.SiteDetail
	if result := r.db.WithContext(ctx).Order("created_at").First(&detail); result.Error != nil {
		return models.SiteDetail{}, translate(result.Error, "site detail")
	}
	return detail, nil
}

func (r *SiteDetailRepository) Create(ctx context.Context, detail *models.SiteDetail) error {
	if result := r.db.WithContext(ctx).Create(detail); result.Error != nil {
		return translate(result.Error, "site detail")
	}
	return nil
}

type SubscriberRepository struct {
	db *gorm.DB
}

var _ general.SubscriberRepository = (*SubscriberRepository)(nil)

func NewSubscriberRepository(db *gorm.DB) *SubscriberRepository {
	return &SubscriberRepository{db: db}
}

func (r *SubscriberRepository) GetByEmail(ctx context.Context, email string) (models.Subscriber, error) {
	var subscriber models.Subscriber
	if result := r.db.WithContext(ctx).Where("email = ?", email).First(&subscriber); result.Error != nil {
		return models.Subscriber{}, translate(result.Error, "subscriber")
	}
	return subscriber, nil
}

func (r *SubscriberRepository) Create(ctx context.Context, subscriber *models.Subscriber) error {
	if result := r.db.WithContext(ctx).Create(subscriber); result.Error != nil {
		return translate(result.Error, "subscriber")
	}
	return nil
}
