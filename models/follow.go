package models

import (
	"time"

	"gorm.io/gorm"
)

// Follow is a directed edge meaning the user receives the author's posts in
// their personalized feed. Uniqueness of (user, author) and the no-self-follow
// rule are enforced by the storage layer; application-side checks are only a
// pre-flight, since they race under concurrent identical requests.
type Follow struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_follows_user_author;check:chk_follows_no_self,user_id <> author_id" json:"user_id"`
	AuthorID  uint      `gorm:"not null;index;uniqueIndex:idx_follows_user_author" json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
}

// IsFollowing reports whether user already follows author.
func IsFollowing(db *gorm.DB, userID, authorID uint) (bool, error) {
	var n int64
	err := db.Model(&Follow{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&n).Error
	return n > 0, err
}
