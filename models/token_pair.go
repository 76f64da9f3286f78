package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TokenPair 代表使用者目前唯一有效的 access/refresh token
// 每個使用者最多只有一筆，重新登入或刷新時整筆替換，登出時刪除
type TokenPair struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Access    string    `gorm:"type:text;not null"`
	Refresh   string    `gorm:"type:text;not null;uniqueIndex"`
	CreatedAt time.Time
	UpdatedAt time.Time

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (TokenPair) TableName() string {
	return "jwts"
}

func (t *TokenPair) BeforeCreate(*gorm.DB) error {
	return newID(&t.ID)
}
