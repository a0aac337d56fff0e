package tasks

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"societypay_echo/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(t.TempDir()+"/tasks.db"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.PaymentTransaction{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func seedTransaction(t *testing.T, db *gorm.DB, sessionID string, status models.TransactionStatus, age time.Duration) {
	t.Helper()
	txn := models.PaymentTransaction{
		SessionID:     sessionID,
		Gateway:       models.PaymentGatewayMidtrans,
		FlatID:        1,
		FlatNumber:    "F101",
		Month:         6,
		Year:          2025,
		Amount:        500,
		Currency:      "IDR",
		PaymentStatus: status,
	}
	if err := db.Create(&txn).Error; err != nil {
		t.Fatalf("seed transaction %s: %v", sessionID, err)
	}
	err := db.Model(&models.PaymentTransaction{}).
		Where("session_id = ?", sessionID).
		Update("created_at", time.Now().UTC().Add(-age)).Error
	if err != nil {
		t.Fatalf("backdate transaction %s: %v", sessionID, err)
	}
}

func TestExpireStaleTransactions(t *testing.T) {
	db := newTestDB(t)
	seedTransaction(t, db, "stale-pending", models.TransactionPending, 48*time.Hour)
	seedTransaction(t, db, "fresh-pending", models.TransactionPending, time.Hour)
	seedTransaction(t, db, "old-paid", models.TransactionPaid, 48*time.Hour)

	expired, err := ExpireStaleTransactions(db, 24*time.Hour)
	if err != nil {
		t.Fatalf("ExpireStaleTransactions: %v", err)
	}
	if expired != 1 {
		t.Errorf("expired = %d; want 1", expired)
	}

	status := func(sessionID string) models.TransactionStatus {
		var txn models.PaymentTransaction
		if err := db.Where("session_id = ?", sessionID).First(&txn).Error; err != nil {
			t.Fatalf("load %s: %v", sessionID, err)
		}
		return txn.PaymentStatus
	}
	if got := status("stale-pending"); got != models.TransactionExpired {
		t.Errorf("stale-pending = %s; want expired", got)
	}
	if got := status("fresh-pending"); got != models.TransactionPending {
		t.Errorf("fresh-pending = %s; want pending", got)
	}
	if got := status("old-paid"); got != models.TransactionPaid {
		t.Errorf("old-paid = %s; want paid", got)
	}
}

func TestExpireStaleTransactionsIdempotent(t *testing.T) {
	db := newTestDB(t)
	seedTransaction(t, db, "stale-pending", models.TransactionPending, 48*time.Hour)

	if _, err := ExpireStaleTransactions(db, 24*time.Hour); err != nil {
		t.Fatalf("first sweep: %v", err)
	}
	expired, err := ExpireStaleTransactions(db, 24*time.Hour)
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if expired != 0 {
		t.Errorf("second sweep expired %d rows; want 0", expired)
	}
}
