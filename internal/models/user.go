package models

import (
	"time"

	"gorm.io/gorm"
)

// Role represents the role of a user
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleResident Role = "resident"
)

// User represents a resident or admin account
type User struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Name         string  `gorm:"type:varchar(255)" json:"name"`
	Email        string  `gorm:"type:varchar(255);uniqueIndex" json:"email"`
	PasswordHash string  `gorm:"type:varchar(255)" json:"-"`
	Phone        string  `gorm:"type:varchar(50)" json:"phone"`
	Role         Role    `gorm:"type:varchar(20);default:'resident'" json:"role"`
	FlatNumber   *string `gorm:"type:varchar(50)" json:"flat_number,omitempty"`

	// IsSuperAdmin is set exactly once, on the first admin account ever
	// registered. Every later admin starts unapproved. The partial unique
	// index holds the at-most-one guarantee against concurrent first
	// registrations.
	IsSuperAdmin bool `gorm:"default:false;index:idx_users_super_admin,unique,where:is_super_admin = true" json:"is_super_admin"`
	Approved     bool `gorm:"default:true" json:"approved"`
}
