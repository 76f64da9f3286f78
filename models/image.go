package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Image 代表拍賣系統中的圖片
// 包含基本的圖片資訊，如圖片 URL 以及上傳者的使用者 ID
type Image struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	UploaderID uuid.UUID `gorm:"type:uuid;not null;index;<-:create"`
	Url        string    `gorm:"type:text;not null;<-:create"`
	CreatedAt  time.Time

	Uploader *User `gorm:"foreignKey:UploaderID;constraint:OnDelete:CASCADE"`
}

func (i *Image) BeforeCreate(*gorm.DB) error {
	return newID(&i.ID)
}
