package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Listing 代表拍賣系統中的拍賣品
// 最高出價、出價數量與剩餘時間都是讀取時計算，不儲存在資料表中
type Listing struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	AuctioneerID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name         string          `gorm:"type:varchar(70);not null"`
	Slug         string          `gorm:"type:varchar(255);not null;uniqueIndex"`
	Description  string          `gorm:"type:text;not null"`
	CategoryID   *uuid.UUID      `gorm:"type:uuid;index"`
	Price        decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	ClosingDate  time.Time       `gorm:"not null"`
	Active       bool            `gorm:"not null"`
	ImageURL     string          `gorm:"type:text"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// 外鍵關聯
	Auctioneer *User     `gorm:"foreignKey:AuctioneerID;constraint:OnDelete:CASCADE"`
	Category   *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`
}

func (l *Listing) BeforeCreate(*gorm.DB) error {
	return newID(&l.ID)
}
