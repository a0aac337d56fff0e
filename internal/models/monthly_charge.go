package models

import "time"

// MonthlyCharge holds the base maintenance charge for a (month, year) and
// an informational cost breakdown. At most one entry per period.
type MonthlyCharge struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Month      int     `gorm:"index:idx_monthly_charges_period,unique,priority:1" json:"month"`
	Year       int     `gorm:"index:idx_monthly_charges_period,unique,priority:2" json:"year"`
	BaseCharge float64 `gorm:"type:decimal(15,2)" json:"base_charge"`

	// Breakdown categories are admin-defined strings. It need not sum to
	// BaseCharge.
	Breakdown map[string]float64 `gorm:"serializer:json" json:"breakdown"`
}
