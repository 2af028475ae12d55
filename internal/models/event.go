package models

import (
	"time"

	"gorm.io/gorm"
)

// Event is a scheduled church activity (service, study group, retreat).
type Event struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Location    string         `json:"location"`
	StartsAt    time.Time      `gorm:"not null;index" json:"starts_at"`
	EndsAt      *time.Time     `json:"ends_at,omitempty"`
	ImageURL    string         `json:"image_url"`
	CreatedByID uint           `gorm:"not null" json:"created_by_id"`
	CreatedBy   Profile        `gorm:"foreignKey:CreatedByID" json:"created_by"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for GORM.
func (Event) TableName() string {
	return "events"
}
