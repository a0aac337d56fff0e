package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"societypay_echo/internal/models"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
)

// CheckoutGateway is the checkout-style provider boundary (sessions with a
// hosted redirect, status polls, signed notifications).
type CheckoutGateway interface {
	CreateTransaction(orderID string, amount int64, param *snap.Request) (*snap.Response, error)
	CheckTransaction(orderID string) (*coreapi.TransactionStatusResponse, error)
	VerifySignature(orderID, statusCode, grossAmount, signatureKey string) bool
}

// OrderGateway is the order-style provider boundary (server-minted orders,
// client-asserted settlement proven by signature, signed webhooks).
type OrderGateway interface {
	CreateOrder(amountMinor int64, currency string, notes map[string]interface{}) (string, error)
	VerifyPaymentSignature(orderID, paymentID, signature string) bool
	VerifyWebhookSignature(body []byte, signature string) bool
	KeyID() string
}

// PaymentService owns the payment ledger and the gateway reconciliation
// state machine: pending transactions move CREATED -> SETTLED -> LEDGERED,
// and a (flat, month, year) is ledgered at most once no matter how many
// settlement notifications race.
type PaymentService struct {
	db       *gorm.DB
	dues     *DuesService
	checkout CheckoutGateway
	orders   OrderGateway
}

// NewPaymentService wires a PaymentService
func NewPaymentService(db *gorm.DB, dues *DuesService, checkout CheckoutGateway, orders OrderGateway) *PaymentService {
	return &PaymentService{db: db, dues: dues, checkout: checkout, orders: orders}
}

// CheckoutSession is the handle returned to the caller after opening a
// checkout-style session.
type CheckoutSession struct {
	SessionID   string  `json:"session_id"`
	Token       string  `json:"token"`
	RedirectURL string  `json:"redirect_url"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
}

// CheckoutStatusResult is the outcome of a status poll.
type CheckoutStatusResult struct {
	TransactionStatus string                   `json:"status"`
	PaymentStatus     models.TransactionStatus `json:"payment_status"`
	Amount            float64                  `json:"amount"`
	Currency          string                   `json:"currency"`
}

// GatewayOrder is the handle returned after opening an order-style session.
type GatewayOrder struct {
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	KeyID    string `json:"key_id"`
}

const receiptAttempts = 3

func newReceiptNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("REC-%s-%s", time.Now().UTC().Format("20060102"), suffix)
}

// RecordPayment creates a ledger entry from a direct admin action (cash or
// any out-of-band method). The same per-period uniqueness holds here as on
// the gateway path: a second paid entry for (flat, month, year) is a
// conflict, not a silent duplicate.
func (s *PaymentService) RecordPayment(flatID uint, month, year int, amount float64, method string) (*models.Payment, error) {
	var flat models.Flat
	if err := s.db.First(&flat, flatID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFlatNotFound
		}
		return nil, err
	}

	if method == "" {
		method = models.PaymentMethodCash
	}

	payment := &models.Payment{
		FlatID:        flat.ID,
		FlatNumber:    flat.FlatNumber,
		Month:         month,
		Year:          year,
		Amount:        amount,
		PaymentDate:   time.Now().UTC(),
		PaymentMethod: method,
		Status:        models.PaymentStatusPaid,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		return s.insertPayment(tx, payment)
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// periodLedgered reports whether a paid entry already exists for the
// flat's period.
func periodLedgered(tx *gorm.DB, payment *models.Payment) (bool, error) {
	var existing int64
	err := tx.Model(&models.Payment{}).
		Where("flat_id = ? AND month = ? AND year = ? AND status = ?",
			payment.FlatID, payment.Month, payment.Year, models.PaymentStatusPaid).
		Count(&existing).Error
	return existing > 0, err
}

// insertPayment creates a payment row inside the given transaction,
// retrying receipt generation on a receipt-number collision. The period is
// checked before the insert; the partial unique index stays as the
// backstop for writers racing past the check. The create runs under a
// savepoint so a unique violation does not abort the enclosing transaction
// (postgres refuses further statements otherwise). A duplicate period is
// ErrDuplicatePayment.
func (s *PaymentService) insertPayment(tx *gorm.DB, payment *models.Payment) error {
	ledgered, err := periodLedgered(tx, payment)
	if err != nil {
		return err
	}
	if ledgered {
		return ErrDuplicatePayment
	}

	for attempt := 0; attempt < receiptAttempts; attempt++ {
		payment.ID = 0
		payment.ReceiptNumber = newReceiptNumber()
		if err := tx.SavePoint("ledger_insert").Error; err != nil {
			return err
		}
		err := tx.Create(payment).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		if err := tx.RollbackTo("ledger_insert").Error; err != nil {
			return err
		}
		// a racing writer may have ledgered the period between the check
		// and the insert; otherwise it was a receipt collision
		ledgered, err = periodLedgered(tx, payment)
		if err != nil {
			return err
		}
		if ledgered {
			return ErrDuplicatePayment
		}
	}
	return fmt.Errorf("could not allocate a unique receipt number after %d attempts", receiptAttempts)
}

// ListPayments returns ledger entries newest first. Admins may filter by
// flat; residents are always scoped to their own flat server-side, no
// matter what filter they pass.
func (s *PaymentService) ListPayments(userID uint, role models.Role, flatFilter uint) ([]models.Payment, error) {
	query := s.db.Order("created_at desc")

	if role == models.RoleResident {
		var user models.User
		if err := s.db.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
		if user.FlatNumber == nil {
			return []models.Payment{}, nil
		}
		var flat models.Flat
		err := s.db.Where("flat_number = ?", *user.FlatNumber).First(&flat).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return []models.Payment{}, nil
			}
			return nil, err
		}
		query = query.Where("flat_id = ?", flat.ID)
	} else if flatFilter > 0 {
		query = query.Where("flat_id = ?", flatFilter)
	}

	var payments []models.Payment
	if err := query.Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

func correlationMetadata(flatID uint, month, year int, userID uint) map[string]interface{} {
	return map[string]interface{}{
		"flat_id": strconv.FormatUint(uint64(flatID), 10),
		"month":   strconv.Itoa(month),
		"year":    strconv.Itoa(year),
		"user_id": strconv.FormatUint(uint64(userID), 10),
	}
}

// billableFlat resolves the flat and its due amount for a real charge.
// Unlike AmountDue's silent-zero default, opening a session fails loud when
// no schedule is configured for the period.
func (s *PaymentService) billableFlat(flatID uint, month, year int) (*models.Flat, float64, error) {
	var flat models.Flat
	if err := s.db.First(&flat, flatID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrFlatNotFound
		}
		return nil, 0, err
	}
	charge, err := s.dues.ScheduleFor(month, year)
	if err != nil {
		return nil, 0, err
	}
	if charge == nil {
		return nil, 0, ErrChargeNotSet
	}
	amount, err := s.dues.AmountDue(&flat, month, year)
	if err != nil {
		return nil, 0, err
	}
	return &flat, amount, nil
}

// CreateCheckout opens a checkout-style session for a flat's dues and
// persists the pending transaction keyed by the session id.
func (s *PaymentService) CreateCheckout(userID, flatID uint, month, year int, originURL string) (*CheckoutSession, error) {
	flat, amount, err := s.billableFlat(flatID, month, year)
	if err != nil {
		return nil, err
	}

	orderID := fmt.Sprintf("flat-due-%d-%d", flat.ID, time.Now().UnixNano())
	// the gateway bills whole currency units
	grossAmount := int64(math.Round(amount))
	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderID,
			GrossAmt: grossAmount,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: flat.OwnerName,
			Email: flat.OwnerEmail,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    fmt.Sprintf("flat-%d", flat.ID),
				Name:  fmt.Sprintf("Maintenance %02d/%d for flat %s", month, year, flat.FlatNumber),
				Price: grossAmount,
				Qty:   1,
			},
		},
		Callbacks: &snap.Callbacks{
			Finish: originURL + "/payment-success",
		},
	}

	resp, err := s.checkout.CreateTransaction(orderID, grossAmount, req)
	if err != nil {
		return nil, gatewayError("midtrans", "create transaction", err)
	}

	txn := models.PaymentTransaction{
		SessionID:     orderID,
		Gateway:       models.PaymentGatewayMidtrans,
		FlatID:        flat.ID,
		FlatNumber:    flat.FlatNumber,
		Month:         month,
		Year:          year,
		Amount:        amount,
		Currency:      "IDR",
		PaymentStatus: models.TransactionPending,
		Metadata:      correlationMetadata(flat.ID, month, year, userID),
	}
	if err := s.db.Create(&txn).Error; err != nil {
		return nil, err
	}

	return &CheckoutSession{
		SessionID:   orderID,
		Token:       resp.Token,
		RedirectURL: resp.RedirectURL,
		Amount:      amount,
		Currency:    "IDR",
	}, nil
}

// settlementReported tells whether a gateway status means the money moved.
func settlementReported(transactionStatus, fraudStatus string) bool {
	if transactionStatus == "settlement" {
		return true
	}
	return transactionStatus == "capture" && (fraudStatus == "accept" || fraudStatus == "")
}

// CheckoutStatus polls the gateway for a session and, on the first observed
// settlement, promotes the pending transaction into the ledger. Polling is
// idempotent: later polls see the transaction already paid.
func (s *PaymentService) CheckoutStatus(sessionID string) (*CheckoutStatusResult, error) {
	var txn models.PaymentTransaction
	if err := s.db.Where("session_id = ?", sessionID).First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}

	status, err := s.checkout.CheckTransaction(sessionID)
	if err != nil {
		return nil, gatewayError("midtrans", "check transaction", err)
	}

	if settlementReported(status.TransactionStatus, status.FraudStatus) && txn.PaymentStatus != models.TransactionPaid {
		if err := s.promote(&txn, models.PaymentMethodMidtrans); err != nil {
			return nil, err
		}
	}

	return &CheckoutStatusResult{
		TransactionStatus: status.TransactionStatus,
		PaymentStatus:     txn.PaymentStatus,
		Amount:            txn.Amount,
		Currency:          txn.Currency,
	}, nil
}

// HandleCheckoutNotification processes an asynchronous gateway notification.
// The signature is verified before any payload field is trusted; an invalid
// signature never touches the transaction or the ledger.
func (s *PaymentService) HandleCheckoutNotification(payload map[string]interface{}) error {
	orderID, _ := payload["order_id"].(string)
	statusCode, _ := payload["status_code"].(string)
	grossAmount, _ := payload["gross_amount"].(string)
	signatureKey, _ := payload["signature_key"].(string)

	valid := s.checkout.VerifySignature(orderID, statusCode, grossAmount, signatureKey)

	raw, _ := json.Marshal(payload)
	s.archiveCallback(models.PaymentGatewayMidtrans, orderID, valid, raw)

	if !valid {
		return ErrBadSignature
	}

	var txn models.PaymentTransaction
	if err := s.db.Where("session_id = ?", orderID).First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTransactionNotFound
		}
		return err
	}

	transactionStatus, _ := payload["transaction_status"].(string)
	fraudStatus, _ := payload["fraud_status"].(string)

	switch {
	case settlementReported(transactionStatus, fraudStatus):
		return s.promote(&txn, models.PaymentMethodMidtrans)
	case transactionStatus == "deny" || transactionStatus == "cancel" ||
		transactionStatus == "expire" || transactionStatus == "failure":
		return s.db.Model(&models.PaymentTransaction{}).
			Where("session_id = ? AND payment_status = ?", txn.SessionID, models.TransactionPending).
			Update("payment_status", models.TransactionExpired).Error
	}
	return nil
}

// CreateOrder opens an order-style session for a flat's dues. The gateway
// works in minor currency units.
func (s *PaymentService) CreateOrder(userID, flatID uint, month, year int) (*GatewayOrder, error) {
	flat, amount, err := s.billableFlat(flatID, month, year)
	if err != nil {
		return nil, err
	}

	amountMinor := int64(math.Round(amount * 100))
	notes := correlationMetadata(flat.ID, month, year, userID)

	orderID, err := s.orders.CreateOrder(amountMinor, "INR", notes)
	if err != nil {
		return nil, gatewayError("razorpay", "create order", err)
	}

	txn := models.PaymentTransaction{
		SessionID:     orderID,
		Gateway:       models.PaymentGatewayRazorpay,
		FlatID:        flat.ID,
		FlatNumber:    flat.FlatNumber,
		Month:         month,
		Year:          year,
		Amount:        amount,
		Currency:      "INR",
		PaymentStatus: models.TransactionPending,
		Metadata:      notes,
	}
	if err := s.db.Create(&txn).Error; err != nil {
		return nil, err
	}

	return &GatewayOrder{
		OrderID:  orderID,
		Amount:   amountMinor,
		Currency: "INR",
		KeyID:    s.orders.KeyID(),
	}, nil
}

// VerifyOrder checks a client-asserted settlement cryptographically and
// promotes on success. Re-verifying an already-paid order is a no-op
// success, not a second ledger entry.
func (s *PaymentService) VerifyOrder(orderID, paymentID, signature string) error {
	if !s.orders.VerifyPaymentSignature(orderID, paymentID, signature) {
		return ErrBadSignature
	}

	var txn models.PaymentTransaction
	if err := s.db.Where("session_id = ?", orderID).First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTransactionNotFound
		}
		return err
	}

	if txn.PaymentStatus == models.TransactionPaid {
		return nil
	}
	return s.promote(&txn, models.PaymentMethodRazorpay)
}

// razorpayEvent is the slice of a webhook body this service cares about.
type razorpayEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				OrderID string `json:"order_id"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// HandleOrderWebhook processes a signed order-gateway webhook. Body content
// is only parsed after the HMAC checks out.
func (s *PaymentService) HandleOrderWebhook(body []byte, signature string) error {
	if !s.orders.VerifyWebhookSignature(body, signature) {
		s.archiveCallback(models.PaymentGatewayRazorpay, "", false, body)
		return ErrBadSignature
	}

	var event razorpayEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("malformed webhook body: %w", err)
	}

	orderID := event.Payload.Payment.Entity.OrderID
	s.archiveCallback(models.PaymentGatewayRazorpay, orderID, true, body)

	if event.Event != "payment.captured" && event.Event != "order.paid" {
		return nil
	}

	var txn models.PaymentTransaction
	if err := s.db.Where("session_id = ?", orderID).First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTransactionNotFound
		}
		return err
	}
	if txn.PaymentStatus == models.TransactionPaid {
		return nil
	}
	return s.promote(&txn, models.PaymentMethodRazorpay)
}

// promote atomically marks a transaction paid and appends the ledger entry.
// The status flip is a conditional UPDATE, so exactly one of N racing
// settlement paths wins it; the partial unique index on paid payments is
// the backstop if the period was ledgered some other way (e.g. recorded as
// cash in the meantime). An expired transaction that really settled is
// still honored.
func (s *PaymentService) promote(txn *models.PaymentTransaction, method string) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.PaymentTransaction{}).
			Where("session_id = ? AND payment_status <> ?", txn.SessionID, models.TransactionPaid).
			Update("payment_status", models.TransactionPaid)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// a racing poll or webhook already promoted this session
			return nil
		}

		payment := &models.Payment{
			FlatID:        txn.FlatID,
			FlatNumber:    txn.FlatNumber,
			Month:         txn.Month,
			Year:          txn.Year,
			Amount:        txn.Amount,
			PaymentDate:   time.Now().UTC(),
			PaymentMethod: method,
			Status:        models.PaymentStatusPaid,
		}
		if err := s.insertPayment(tx, payment); err != nil {
			if errors.Is(err, ErrDuplicatePayment) {
				return nil
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}
	txn.PaymentStatus = models.TransactionPaid
	return nil
}

func (s *PaymentService) archiveCallback(gateway models.PaymentGateway, orderID string, valid bool, payload []byte) {
	entry := models.PaymentCallbackHistory{
		Gateway:        gateway,
		OrderID:        orderID,
		SignatureValid: valid,
		Payload:        payload,
	}
	if err := s.db.Create(&entry).Error; err != nil {
		log.Printf("failed to archive %s callback: %v", gateway, err)
	}
}
