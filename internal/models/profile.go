// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Role determines what a member is allowed to manage.
type Role string

const (
	// RoleMember is the default role for registered community members.
	RoleMember Role = "member"
	// RoleAdmin grants content management and moderation rights.
	RoleAdmin Role = "admin"
)

// MemberStatus tracks a member's standing in the congregation.
type MemberStatus string

const (
	// MemberStatusActive is a regular attending member.
	MemberStatusActive MemberStatus = "active"
	// MemberStatusVisitor is a registered visitor without membership.
	MemberStatusVisitor MemberStatus = "visitor"
	// MemberStatusInactive marks a member no longer attending.
	MemberStatusInactive MemberStatus = "inactive"
)

// Profile represents a registered member of the community.
type Profile struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Email        string         `gorm:"unique;not null" json:"email"`
	DisplayName  string         `gorm:"not null" json:"display_name"`
	Password     string         `gorm:"not null" json:"-"`
	Role         Role           `gorm:"type:varchar(20);default:'member';index" json:"role"`
	MemberStatus MemberStatus   `gorm:"type:varchar(20);default:'active'" json:"member_status"`
	AvatarURL    string         `json:"avatar_url"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for GORM.
func (Profile) TableName() string {
	return "profiles"
}

// IsAdmin reports whether the profile carries the admin role.
func (p *Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}
