package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"societypay_echo/internal/services"
)

// errorBody is the structured error surface: a stable kind plus a message.
type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// JSONErrorHandler maps domain errors onto the error taxonomy and renders
// every failure as {"error": {"kind", "message"}}. No silent failures.
func JSONErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	body := errorBody{Kind: "internal", Message: "Something went wrong"}

	var httpErr *echo.HTTPError
	var gatewayErr *services.GatewayError

	switch {
	case errors.As(err, &httpErr):
		code = httpErr.Code
		body.Kind = kindForStatus(code)
		if msg, ok := httpErr.Message.(string); ok && msg != "" {
			body.Message = msg
		} else {
			body.Message = http.StatusText(code)
		}
	case errors.Is(err, services.ErrFlatNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrNoFlatForUser),
		errors.Is(err, services.ErrChargeNotSet),
		errors.Is(err, services.ErrTransactionNotFound):
		code, body = http.StatusNotFound, errorBody{Kind: "not_found", Message: err.Error()}
	case errors.Is(err, services.ErrFlatNumberTaken),
		errors.Is(err, services.ErrChargeExists),
		errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrDuplicatePayment):
		code, body = http.StatusConflict, errorBody{Kind: "conflict", Message: err.Error()}
	case errors.Is(err, services.ErrBadSignature),
		errors.Is(err, services.ErrInvalidCredentials):
		code, body = http.StatusUnauthorized, errorBody{Kind: "unauthenticated", Message: err.Error()}
	case errors.Is(err, services.ErrPendingApproval):
		code, body = http.StatusForbidden, errorBody{Kind: "forbidden", Message: err.Error()}
	case errors.As(err, &gatewayErr):
		code, body = http.StatusBadGateway, errorBody{Kind: "gateway_error", Message: gatewayErr.Error()}
	default:
		c.Logger().Error(err)
	}

	if err := c.JSON(code, map[string]errorBody{"error": body}); err != nil {
		c.Logger().Error(err)
	}
}

func kindForStatus(code int) string {
	switch code {
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusUnauthorized:
		return "unauthenticated"
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusBadGateway:
		return "gateway_error"
	}
	return "internal"
}
