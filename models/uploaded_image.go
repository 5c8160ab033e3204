package models

import "time"

// UploadedImage records a stored post image so the background cleaner can
// sweep files that were uploaded but never attached to any post.
type UploadedImage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	FilePath  string    `gorm:"size:1024;not null" json:"file_path"`
	URL       string    `gorm:"size:1024;not null;index" json:"url"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
