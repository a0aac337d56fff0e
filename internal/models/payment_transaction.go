package models

import "time"

// PaymentGateway identifies which external provider issued a session.
type PaymentGateway string

const (
	PaymentGatewayMidtrans PaymentGateway = "midtrans"
	PaymentGatewayRazorpay PaymentGateway = "razorpay"
)

// TransactionStatus is the local settlement state of a gateway session.
type TransactionStatus string

const (
	TransactionPending TransactionStatus = "pending"
	TransactionPaid    TransactionStatus = "paid"
	TransactionExpired TransactionStatus = "expired"
)

// PaymentTransaction correlates an externally issued checkout/order session
// back to a flat and billing period. Rows are mutated in place on
// settlement or expiry, never deleted.
type PaymentTransaction struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	SessionID  string         `gorm:"type:varchar(100);uniqueIndex" json:"session_id"`
	Gateway    PaymentGateway `gorm:"type:varchar(50);not null" json:"gateway"`
	FlatID     uint           `gorm:"index" json:"flat_id"`
	FlatNumber string         `gorm:"type:varchar(50)" json:"flat_number"`
	Month      int            `json:"month"`
	Year       int            `json:"year"`
	Amount     float64        `gorm:"type:decimal(15,2)" json:"amount"`
	Currency   string         `gorm:"type:varchar(10)" json:"currency"`

	PaymentStatus TransactionStatus      `gorm:"type:varchar(20);default:'pending';index" json:"payment_status"`
	Metadata      map[string]interface{} `gorm:"serializer:json" json:"metadata"`
}
