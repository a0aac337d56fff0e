package services

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
)

// MidtransService is the checkout-style gateway client: Snap mints hosted
// checkout sessions with a redirect URL, Core API answers status polls.
type MidtransService struct {
	SnapClient snap.Client
	CoreClient coreapi.Client
	serverKey  string
}

// NewMidtransService builds the gateway client from environment settings
func NewMidtransService() *MidtransService {
	serverKey := os.Getenv("MIDTRANS_SERVER_KEY")
	clientKey := os.Getenv("MIDTRANS_CLIENT_KEY")
	envStr := os.Getenv("MIDTRANS_IS_PRODUCTION")

	env := midtrans.Sandbox
	if envStr == "true" {
		env = midtrans.Production
	}

	var s snap.Client
	s.New(serverKey, env)

	var c coreapi.Client
	c.New(serverKey, env)

	midtrans.ServerKey = serverKey
	midtrans.ClientKey = clientKey
	midtrans.Environment = env

	return &MidtransService{
		SnapClient: s,
		CoreClient: c,
		serverKey:  serverKey,
	}
}

// CreateTransaction creates a Snap transaction and returns the session
// token and redirect URL
func (s *MidtransService) CreateTransaction(orderID string, amount int64, param *snap.Request) (*snap.Response, error) {
	if param == nil {
		param = &snap.Request{
			TransactionDetails: midtrans.TransactionDetails{
				OrderID:  orderID,
				GrossAmt: amount,
			},
		}
	} else {
		if param.TransactionDetails.OrderID == "" {
			param.TransactionDetails.OrderID = orderID
		}
		if param.TransactionDetails.GrossAmt == 0 {
			param.TransactionDetails.GrossAmt = amount
		}
	}

	resp, midErr := s.SnapClient.CreateTransaction(param)
	if midErr != nil {
		return nil, fmt.Errorf("midtrans create transaction error: %v", midErr)
	}

	return resp, nil
}

// CheckTransaction fetches the live settlement status of an order
func (s *MidtransService) CheckTransaction(orderID string) (*coreapi.TransactionStatusResponse, error) {
	resp, midErr := s.CoreClient.CheckTransaction(orderID)
	if midErr != nil {
		return nil, fmt.Errorf("midtrans check transaction error: %v", midErr)
	}
	return resp, nil
}

// VerifySignature checks a notification's signature key:
// SHA512(order_id + status_code + gross_amount + server_key). Nothing from
// an unsigned payload may be trusted.
func (s *MidtransService) VerifySignature(orderID, statusCode, grossAmount, signatureKey string) bool {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + s.serverKey))
	expected := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signatureKey)) == 1
}
