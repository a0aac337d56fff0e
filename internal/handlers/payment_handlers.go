package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"societypay_echo/internal/services"
)

// PaymentHandler exposes the payment ledger and the gateway reconciliation
// endpoints
type PaymentHandler struct {
	payments *services.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(payments *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// List returns ledger entries. The resident scoping happens in the
// service; the flat_id query parameter only means something for admins.
func (h *PaymentHandler) List(c echo.Context) error {
	var flatFilter uint
	if raw := c.QueryParam("flat_id"); raw != "" {
		val, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid flat_id filter")
		}
		flatFilter = uint(val)
	}

	payments, err := h.payments.ListPayments(getUintFromContext(c, "userID"), getRoleFromContext(c), flatFilter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, payments)
}

// Record creates a ledger entry from a direct admin action
func (h *PaymentHandler) Record(c echo.Context) error {
	var req PaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON payload")
	}
	if req.FlatID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "flat_id is required")
	}

	payment, err := h.payments.RecordPayment(req.FlatID, req.Month, req.Year, req.Amount, req.PaymentMethod)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, payment)
}

// CreateCheckout opens a checkout-style gateway session
func (h *PaymentHandler) CreateCheckout(c echo.Context) error {
	var req CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON payload")
	}
	if req.FlatID == 0 || req.OriginURL == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "flat_id and origin_url are required")
	}

	session, err := h.payments.CreateCheckout(getUintFromContext(c, "userID"), req.FlatID, req.Month, req.Year, req.OriginURL)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, session)
}

// CheckoutStatus polls the gateway for a session's settlement state
func (h *PaymentHandler) CheckoutStatus(c echo.Context) error {
	sessionID := c.Param("session_id")
	if sessionID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "session_id is required")
	}

	status, err := h.payments.CheckoutStatus(sessionID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, status)
}

// CheckoutWebhook receives asynchronous signed notifications from the
// checkout-style gateway
func (h *PaymentHandler) CheckoutWebhook(c echo.Context) error {
	var payload map[string]interface{}
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON payload")
	}

	if err := h.payments.HandleCheckoutNotification(payload); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]bool{"received": true})
}

// CreateOrder opens an order-style gateway session
func (h *PaymentHandler) CreateOrder(c echo.Context) error {
	var req OrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON payload")
	}
	if req.FlatID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "flat_id is required")
	}

	order, err := h.payments.CreateOrder(getUintFromContext(c, "userID"), req.FlatID, req.Month, req.Year)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, order)
}

// VerifyOrder settles an order from a client-supplied settlement claim,
// after cryptographic verification
func (h *PaymentHandler) VerifyOrder(c echo.Context) error {
	var req VerifyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON payload")
	}

	if err := h.payments.VerifyOrder(req.OrderID, req.PaymentID, req.Signature); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Payment verified and recorded",
	})
}

// OrderWebhook receives signed webhooks from the order-style gateway
func (h *PaymentHandler) OrderWebhook(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Could not read request body")
	}
	signature := c.Request().Header.Get("X-Razorpay-Signature")

	if err := h.payments.HandleOrderWebhook(body, signature); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]bool{"received": true})
}
