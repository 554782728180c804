package models

import "time"

// Caption is a user-authored text attached to an image.
type Caption struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Description string    `gorm:"size:1024;not null" json:"description"`
	ImageID     uint      `gorm:"index;not null" json:"imageId"`
	UserID      uint      `gorm:"index;not null" json:"userId"`
}
