package models

import "time"

// Payment methods recorded in the ledger.
const (
	PaymentMethodCash     = "cash"
	PaymentMethodMidtrans = "midtrans"
	PaymentMethodRazorpay = "razorpay"
)

// PaymentStatusPaid is the only status a ledger entry is ever created with.
const PaymentStatusPaid = "paid"

// Payment is the durable, append-only record of a completed charge.
// The partial unique index on (flat_id, month, year) for paid rows is the
// storage-level guard against double settlement: concurrent promotion
// attempts race on the insert, not on an application-level read.
type Payment struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	FlatID     uint   `gorm:"index;index:idx_payments_flat_period,unique,priority:1,where:status = 'paid'" json:"flat_id"`
	FlatNumber string `gorm:"type:varchar(50)" json:"flat_number"`
	Month      int    `gorm:"index:idx_payments_flat_period,unique,priority:2,where:status = 'paid'" json:"month"`
	Year       int    `gorm:"index:idx_payments_flat_period,unique,priority:3,where:status = 'paid'" json:"year"`

	Amount        float64   `gorm:"type:decimal(15,2)" json:"amount"`
	PaymentDate   time.Time `json:"payment_date"`
	PaymentMethod string    `gorm:"type:varchar(50)" json:"payment_method"`
	ReceiptNumber string    `gorm:"type:varchar(100);uniqueIndex" json:"receipt_number"`
	Status        string    `gorm:"type:varchar(20);default:'paid'" json:"status"`
}
