package gormdb

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"auctionhouse/models"
)

type CategoryRepository struct {
	db *gorm.DB
}

func (r *CategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if result := r.db.WithContext(ctx).Order("name").Find(&categories); result.Error != nil {
		return nil, fmt.Errorf("fail to list categories, err=%w", result.Error)
	}
	return categories, nil
}

func (r *CategoryRepository) GetBySlug(ctx context.Context, slug string) (models.Category, error) {
	var category models.Category
	if result := r.db.WithContext(ctx).Where("slug = ?", slug).First(&category); result.Error != nil {
		return models.Category{}, translate(result.Error, "category")
	}
	return category, nil
}

func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	if result := r.db.WithContext(ctx).Create(category); result.Error != nil {
		return translate(result.Error, "category")
	}
	return nil
}
