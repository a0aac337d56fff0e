package tasks

import (
	"time"

	"gorm.io/gorm"

	"societypay_echo/internal/models"
)

// ExpireStaleTransactions marks pending gateway transactions older than
// olderThan as expired and reports how many were touched. Paid rows are
// never touched, and a settlement arriving after expiry is still honored
// by the promotion path.
func ExpireStaleTransactions(db *gorm.DB, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	res := db.Model(&models.PaymentTransaction{}).
		Where("payment_status = ? AND created_at < ?", models.TransactionPending, cutoff).
		Update("payment_status", models.TransactionExpired)
	return res.RowsAffected, res.Error
}
