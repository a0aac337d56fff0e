package services

import (
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"societypay_echo/internal/models"

	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(t.TempDir()+"/societypay.db"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Flat{},
		&models.MonthlyCharge{},
		&models.Payment{},
		&models.PaymentTransaction{},
		&models.PaymentCallbackHistory{},
	)
	if err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func seedFlat(t *testing.T, db *gorm.DB, number string, customCharge *float64) *models.Flat {
	t.Helper()
	flat := &models.Flat{
		FlatNumber:   number,
		OwnerName:    "Owner " + number,
		OwnerEmail:   number + "@example.com",
		OwnerPhone:   "555-0101",
		FlatSize:     "2BHK",
		CustomCharge: customCharge,
	}
	if err := db.Create(flat).Error; err != nil {
		t.Fatalf("seed flat %s: %v", number, err)
	}
	return flat
}

func seedCharge(t *testing.T, db *gorm.DB, month, year int, base float64, breakdown map[string]float64) *models.MonthlyCharge {
	t.Helper()
	charge := &models.MonthlyCharge{
		Month:      month,
		Year:       year,
		BaseCharge: base,
		Breakdown:  breakdown,
	}
	if err := db.Create(charge).Error; err != nil {
		t.Fatalf("seed charge %d/%d: %v", month, year, err)
	}
	return charge
}

func floatPtr(v float64) *float64 { return &v }

const testServerKey = "test-server-key"

// midtransSignature mirrors the gateway's notification signature scheme.
func midtransSignature(orderID, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

// stubCheckout fakes the checkout-style gateway. Signature checks use the
// real SHA512 scheme against testServerKey.
type stubCheckout struct {
	status    coreapi.TransactionStatusResponse
	checkErr  error
	createErr error
	lastGross int64
}

func (s *stubCheckout) CreateTransaction(orderID string, amount int64, param *snap.Request) (*snap.Response, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.lastGross = amount
	return &snap.Response{
		Token:       "tok-" + orderID,
		RedirectURL: "https://pay.example.test/" + orderID,
	}, nil
}

func (s *stubCheckout) CheckTransaction(orderID string) (*coreapi.TransactionStatusResponse, error) {
	if s.checkErr != nil {
		return nil, s.checkErr
	}
	status := s.status
	status.OrderID = orderID
	return &status, nil
}

func (s *stubCheckout) VerifySignature(orderID, statusCode, grossAmount, signatureKey string) bool {
	return midtransSignature(orderID, statusCode, grossAmount, testServerKey) == signatureKey
}

// stubOrders fakes the order-style gateway.
type stubOrders struct {
	created       int
	createErr     error
	acceptPayment bool
	acceptWebhook bool
}

func (s *stubOrders) CreateOrder(amountMinor int64, currency string, notes map[string]interface{}) (string, error) {
	if s.createErr != nil {
		return "", s.createErr
	}
	s.created++
	return fmt.Sprintf("order_test%04d", s.created), nil
}

func (s *stubOrders) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	return s.acceptPayment
}

func (s *stubOrders) VerifyWebhookSignature(body []byte, signature string) bool {
	return s.acceptWebhook
}

func (s *stubOrders) KeyID() string { return "rzp_test_key" }

func newTestPaymentService(db *gorm.DB, checkout CheckoutGateway, orders OrderGateway) *PaymentService {
	return NewPaymentService(db, NewDuesService(db), checkout, orders)
}

func countPayments(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&models.Payment{}).Count(&n).Error; err != nil {
		t.Fatalf("count payments: %v", err)
	}
	return n
}
