package models

import (
	"time"

	"gorm.io/gorm"
)

// Announcement is a notice published by administrators to the congregation.
type Announcement struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Title     string         `gorm:"not null" json:"title"`
	Body      string         `gorm:"type:text;not null" json:"body"`
	AuthorID  uint           `gorm:"not null" json:"author_id"`
	Author    Profile        `gorm:"foreignKey:AuthorID" json:"author"`
	Published bool           `gorm:"not null;default:true;index" json:"published"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for GORM.
func (Announcement) TableName() string {
	return "announcements"
}
