// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// DefaultPostCategory is applied when a post is created without a category.
const DefaultPostCategory = "general"

// Post represents a community feed post.
// Hidden posts (Visible=false) are retained for admin moderation but
// excluded from member-facing listings.
type Post struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	Title     string   `gorm:"not null" json:"title"`
	Content   string   `gorm:"type:text;not null" json:"content"`
	Category  string   `gorm:"type:varchar(50);not null;default:'general';index" json:"category"`
	AuthorID  uint     `gorm:"not null;index" json:"author_id"`
	Author    Profile  `gorm:"foreignKey:AuthorID" json:"author"`
	Visible   bool     `gorm:"not null;default:true;index" json:"visible"`
	MediaURLs []string `gorm:"serializer:json" json:"media_urls"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int `gorm:"->" json:"comments_count"`
	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->" json:"likes_count"`
	// Liked indicates whether the requesting member liked this post (computed)
	Liked     bool      `gorm:"->" json:"liked"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Post) TableName() string {
	return "community_posts"
}
