package gormdb

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"auctionhouse/media"
	"auctionhouse/models"
)

type ImageRepository struct {
	db *gorm.DB
}

var _ media.ImageRepository = (*ImageRepository)(nil)

func NewImageRepository(db *gorm.DB) *ImageRepository {
	return &ImageRepository{db: db}
}

func (r *ImageRepository) CountSince(ctx context.Context, uploaderID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).
		Model(&models.Image{}).
		Where("uploader_id = ? AND created_at > ?", uploaderID, since).
		Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("fail to count images, err=%w", result.Error)
	}
	return count, nil
}

func (r *ImageRepository) Create(ctx context.Context, image *models.Image) error {
	if result := r.db.WithContext(ctx).Omit(clause.Associations).Create(image); result.Error != nil {
		return translate(result.Error, "image")
	}
	return nil
}
