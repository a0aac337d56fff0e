package handlers

import (
	"github.com/labstack/echo/v4"

	"societypay_echo/internal/models"
)

// RegisterRequest is the payload for account registration.
type RegisterRequest struct {
	Email      string  `json:"email"`
	Password   string  `json:"password"`
	Name       string  `json:"name"`
	Role       string  `json:"role"`
	FlatNumber *string `json:"flat_number,omitempty"`
	Phone      string  `json:"phone"`
}

// LoginRequest is the payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// FlatRequest is the payload for creating or updating a flat.
type FlatRequest struct {
	FlatNumber   string   `json:"flat_number"`
	OwnerName    string   `json:"owner_name"`
	OwnerEmail   string   `json:"owner_email"`
	OwnerPhone   string   `json:"owner_phone"`
	FlatSize     string   `json:"flat_size"`
	CustomCharge *float64 `json:"custom_charge,omitempty"`
}

// ChargeRequest is the payload for creating a monthly charge schedule.
type ChargeRequest struct {
	Month      int                `json:"month"`
	Year       int                `json:"year"`
	BaseCharge float64            `json:"base_charge"`
	Breakdown  map[string]float64 `json:"breakdown"`
}

// PaymentRequest is the payload for direct admin payment entry.
type PaymentRequest struct {
	FlatID        uint    `json:"flat_id"`
	Month         int     `json:"month"`
	Year          int     `json:"year"`
	Amount        float64 `json:"amount"`
	PaymentMethod string  `json:"payment_method"`
}

// CheckoutRequest is the payload for opening a checkout-style session.
type CheckoutRequest struct {
	FlatID    uint   `json:"flat_id"`
	Month     int    `json:"month"`
	Year      int    `json:"year"`
	OriginURL string `json:"origin_url"`
}

// OrderRequest is the payload for opening an order-style session.
type OrderRequest struct {
	FlatID uint `json:"flat_id"`
	Month  int  `json:"month"`
	Year   int  `json:"year"`
}

// VerifyRequest is the payload for the signature-based settlement claim.
type VerifyRequest struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
	FlatID    uint   `json:"flat_id"`
	Month     int    `json:"month"`
	Year      int    `json:"year"`
}

// Helper to safely get a uint from context
func getUintFromContext(c echo.Context, key string) uint {
	val := c.Get(key)
	if val == nil {
		return 0
	}
	uintVal, ok := val.(uint)
	if !ok {
		return 0
	}
	return uintVal
}

func getRoleFromContext(c echo.Context) models.Role {
	role, _ := c.Get("userRole").(models.Role)
	return role
}
