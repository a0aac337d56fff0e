package services

import (
	"errors"
	"fmt"
)

// Domain-level error values surfaced to callers. The HTTP layer maps these
// onto the not_found / conflict / forbidden / unauthenticated /
// gateway_error taxonomy.
var (
	ErrFlatNotFound        = errors.New("flat not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrNoFlatForUser       = errors.New("flat not found for user")
	ErrChargeNotSet        = errors.New("charges not set for this month")
	ErrChargeExists        = errors.New("charges for this month already exist")
	ErrFlatNumberTaken     = errors.New("flat number already exists")
	ErrEmailTaken          = errors.New("email already registered")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrDuplicatePayment    = errors.New("payment already recorded for this period")
	ErrBadSignature        = errors.New("invalid payment signature")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrPendingApproval     = errors.New("admin account pending approval")
)

// GatewayError wraps a downstream payment-provider failure. It is never
// retried here; the client retries the whole checkout or poll.
type GatewayError struct {
	Gateway string
	Op      string
	Err     error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Gateway, e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

func gatewayError(gateway, op string, err error) error {
	if err == nil {
		return nil
	}
	return &GatewayError{Gateway: gateway, Op: op, Err: err}
}
