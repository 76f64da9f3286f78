package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CategorySlugOther 代表沒有分類的拍賣品，資料庫中以 NULL 表示
const CategorySlugOther = "other"

// Category 代表拍賣品的分類
type Category struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name string    `gorm:"type:varchar(30);not null;uniqueIndex"`
	Slug string    `gorm:"type:varchar(255);not null;uniqueIndex"`
}

func (c *Category) BeforeCreate(*gorm.DB) error {
	return newID(&c.ID)
}
