package models

import (
	"time"

	"gorm.io/gorm"
)

// RadioProgram is an entry in the weekly radio program guide.
// StartTime and EndTime are "HH:MM" wall-clock strings; a program whose
// EndTime is at or before its StartTime wraps past midnight.
type RadioProgram struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Title     string         `gorm:"not null" json:"title"`
	Host      string         `json:"host"`
	Weekday   time.Weekday   `gorm:"not null;index" json:"weekday"`
	StartTime string         `gorm:"type:varchar(5);not null" json:"start_time"`
	EndTime   string         `gorm:"type:varchar(5);not null" json:"end_time"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for GORM.
func (RadioProgram) TableName() string {
	return "radio_programs"
}
