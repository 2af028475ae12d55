package models

import (
	"time"

	"gorm.io/gorm"
)

// ContactMessage is a message sent by a member to the church office.
type ContactMessage struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"not null" json:"name"`
	Email     string         `gorm:"not null" json:"email"`
	Message   string         `gorm:"type:text;not null" json:"message"`
	SenderID  *uint          `gorm:"index" json:"sender_id,omitempty"`
	Read      bool           `gorm:"not null;default:false;index" json:"read"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for GORM.
func (ContactMessage) TableName() string {
	return "contact_messages"
}
