package models

import (
	"encoding/json"
	"time"
)

// PaymentCallbackHistory is an append-only archive of raw gateway webhook
// deliveries, kept for audit regardless of whether they settled anything.
type PaymentCallbackHistory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Gateway        PaymentGateway  `gorm:"type:varchar(50);not null" json:"gateway"`
	OrderID        string          `gorm:"type:varchar(100);index" json:"order_id"`
	SignatureValid bool            `json:"signature_valid"`
	Payload        json.RawMessage `gorm:"type:jsonb" json:"payload"`
}
