package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User 代表拍賣系統中的使用者
// 包含基本的使用者資訊，如姓名、email 以及 email 是否已驗證
type User struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	FirstName       string    `gorm:"type:varchar(50);not null"`
	LastName        string    `gorm:"type:varchar(50);not null"`
	Email           string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash    string    `gorm:"type:text;not null"`
	IsEmailVerified bool      `gorm:"not null"`
	AvatarURL       string    `gorm:"type:text"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (u *User) BeforeCreate(*gorm.DB) error {
	return newID(&u.ID)
}

func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
