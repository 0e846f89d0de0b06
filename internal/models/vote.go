package models

import (
	"time"
)

// Vote records that a user voted for a post.
// The combination of UserID and PostID must be unique.
type Vote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_votes_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_votes_user_post" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}
