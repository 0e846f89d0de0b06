// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents a registered account on the news-sharing site.
// Password holds the bcrypt hash and is never serialized to JSON.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"not null" json:"username"`
	Email     string    `gorm:"unique;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Posts    []Post    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"posts,omitempty"`
	Comments []Comment `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"comments,omitempty"`
	// VotedPosts is populated by an explicit join through votes, not a GORM
	// association (see UserRepository.GetByIDWithActivity).
	VotedPosts []Post `gorm:"-" json:"voted_posts,omitempty"`
}
