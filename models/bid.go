package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Bid 代表拍賣品的出價紀錄
// 每個使用者對同一個拍賣品只會有一筆出價，再次出價時更新金額；
// 同一個拍賣品也不會出現兩筆相同金額的出價
type Bid struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_bid_user_listing"`
	ListingID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_bid_user_listing;uniqueIndex:idx_bid_listing_amount"`
	Amount    decimal.Decimal `gorm:"type:numeric(10,2);not null;uniqueIndex:idx_bid_listing_amount"`
	CreatedAt time.Time
	UpdatedAt time.Time

	// 外鍵關聯
	User    *User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Listing *Listing `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE"`
}

func (b *Bid) BeforeCreate(*gorm.DB) error {
	return newID(&b.ID)
}
