// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Comment represents a comment on a post. A comment belongs to exactly one
// post and one user.
type Comment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CommentText string    `gorm:"not null" json:"comment_text"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	PostID      uint      `gorm:"not null;index" json:"post_id"`
	User        User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
