package models

import "time"

// Post is a blog entry written by a user, optionally published into a group
// and optionally carrying one image. Feeds list posts newest first.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	GroupID   *uint     `gorm:"index" json:"group_id,omitempty"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	ImageURL  string    `gorm:"size:512" json:"image_url,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	Group     *Group    `json:"group,omitempty"`
	Comments  []Comment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}
