package memory

import (
	"context"
	"sort"

	"github.com/samber/lo"

	"auctionhouse/auction"
	"auctionhouse/models"
)

type CategoryRepository struct {
	session
}

func (r *CategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := r.read(ctx, func() { categories = lo.Values(r.db.categories) }); err != nil {
		return nil, err
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}

func (r *CategoryRepository) GetBySlug(ctx context.Context, slug string) (models.Category, error) {
	var (
		category models.Category
		ok       bool
	)
	if err := r.read(ctx, func() {
		category, ok = lo.Find(lo.Values(r.db.categories), func(c models.Category) bool { return c.Slug == slug })
	}); err != nil {
		return models.Category{}, err
	}
	if !ok {
		return models.Category{}, auction.NotFoundf("category %s not found", slug)
	}
	return category, nil
}

func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	if err := category.BeforeCreate(nil); err != nil {
		return err
	}
	return r.write(ctx, func() error {
		for _, c := range r.db.categories {
			if c.Name == category.Name || c.Slug == category.Slug {
				return auction.Conflictf("category %s already exists", category.Slug)
			}
		}
		r.db.categories[category.ID] = *category
		return nil
	})
}
