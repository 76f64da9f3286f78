package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WatchlistEntry 代表使用者或訪客關注的拍賣品
// UserID 與 SessionKey 只會有一個有值
type WatchlistEntry struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ListingID  uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_watchlist_user_listing;uniqueIndex:idx_watchlist_session_listing"`
	UserID     *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_watchlist_user_listing;check:chk_watchlist_owner,(user_id IS NULL) <> (session_key IS NULL)"`
	SessionKey *string    `gorm:"type:varchar(255);uniqueIndex:idx_watchlist_session_listing"`
	CreatedAt  time.Time

	// 外鍵關聯
	User    *User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Listing *Listing `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE"`
}

func (WatchlistEntry) TableName() string {
	return "watchlists"
}

func (w *WatchlistEntry) BeforeCreate(*gorm.DB) error {
	return newID(&w.ID)
}
