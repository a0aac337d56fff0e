package models

import "time"

// Flat represents a physical unit in the complex. Flats are hard-deleted;
// historical payments keep a denormalized flat_number snapshot.
type Flat struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	FlatNumber string `gorm:"type:varchar(50);uniqueIndex" json:"flat_number"`
	OwnerName  string `gorm:"type:varchar(255)" json:"owner_name"`
	OwnerEmail string `gorm:"type:varchar(255)" json:"owner_email"`
	OwnerPhone string `gorm:"type:varchar(50)" json:"owner_phone"`
	FlatSize   string `gorm:"type:varchar(50)" json:"flat_size"`

	// CustomCharge overrides the monthly schedule when set. Zero is a
	// valid override; absence is nil.
	CustomCharge *float64 `gorm:"type:decimal(15,2)" json:"custom_charge,omitempty"`
}
