package services

import (
	"fmt"
	"os"

	razorpay "github.com/razorpay/razorpay-go"
	"github.com/razorpay/razorpay-go/utils"
)

// RazorpayService is the order-style gateway client. Orders are created
// server-side; settlement is claimed by the client and must be proven with
// the gateway's payment signature, or pushed via a signed webhook.
type RazorpayService struct {
	client        *razorpay.Client
	keyID         string
	keySecret     string
	webhookSecret string
}

// NewRazorpayService builds the gateway client from environment settings
func NewRazorpayService() *RazorpayService {
	keyID := os.Getenv("RAZORPAY_KEY_ID")
	keySecret := os.Getenv("RAZORPAY_KEY_SECRET")
	return &RazorpayService{
		client:        razorpay.NewClient(keyID, keySecret),
		keyID:         keyID,
		keySecret:     keySecret,
		webhookSecret: os.Getenv("RAZORPAY_WEBHOOK_SECRET"),
	}
}

// KeyID returns the public key id the frontend needs to open the gateway
// widget
func (s *RazorpayService) KeyID() string {
	return s.keyID
}

// CreateOrder mints an order for the given amount in minor units and
// returns the gateway-issued order id
func (s *RazorpayService) CreateOrder(amountMinor int64, currency string, notes map[string]interface{}) (string, error) {
	data := map[string]interface{}{
		"amount":          amountMinor,
		"currency":        currency,
		"payment_capture": 1,
		"notes":           notes,
	}
	body, err := s.client.Order.Create(data, nil)
	if err != nil {
		return "", fmt.Errorf("razorpay order create error: %w", err)
	}
	orderID, ok := body["id"].(string)
	if !ok || orderID == "" {
		return "", fmt.Errorf("razorpay order create: response missing order id")
	}
	return orderID, nil
}

// VerifyPaymentSignature checks a client-asserted settlement claim against
// the gateway's signature primitive
func (s *RazorpayService) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	params := map[string]interface{}{
		"razorpay_order_id":   orderID,
		"razorpay_payment_id": paymentID,
	}
	return utils.VerifyPaymentSignature(params, signature, s.keySecret)
}

// VerifyWebhookSignature checks the HMAC signature on a webhook body
func (s *RazorpayService) VerifyWebhookSignature(body []byte, signature string) bool {
	return utils.VerifyWebhookSignature(string(body), signature, s.webhookSecret)
}
