// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Post represents a shared news link.
type Post struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Title   string `gorm:"not null" json:"title"`
	PostURL string `gorm:"not null" json:"post_url"`
	UserID  uint   `gorm:"index" json:"user_id"`
	User    User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	// VoteCount is not persisted; computed at query time from the votes table
	VoteCount int       `gorm:"->" json:"vote_count"`
	Comments  []Comment `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"comments,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
