package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SiteDetail 是網站的聯絡資訊，整個網站只會有一筆
type SiteDetail struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"type:varchar(300);not null"`
	Email     string    `gorm:"type:varchar(300);not null"`
	Phone     string    `gorm:"type:varchar(300);not null"`
	Address   string    `gorm:"type:varchar(300);not null"`
	Facebook  string    `gorm:"type:varchar(300);not null"`
	Twitter   string    `gorm:"type:varchar(300);not null"`
	WhatsApp  string    `gorm:"type:varchar(300);not null"`
	Instagram string    `gorm:"type:varchar(300);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s *SiteDetail) BeforeCreate(*gorm.DB) error {
	return newID(&s.ID)
}

// Subscriber 代表電子報的訂閱者
type Subscriber struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email     string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	Exported  bool      `gorm:"not null;default:false"`
	CreatedAt time.Time
}

func (s *Subscriber) BeforeCreate(*gorm.DB) error {
	return newID(&s.ID)
}
