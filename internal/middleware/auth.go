package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"societypay_echo/internal/models"
	"societypay_echo/internal/services"
)

// RequireAuth returns a middleware that validates the bearer token and
// stores the caller's identity in the request context. Role is trusted as
// asserted by the token for its lifetime.
func RequireAuth(tokens *services.TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing authorization header")
			}

			tokenString := strings.TrimPrefix(header, "Bearer ")
			if tokenString == header {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization format")
			}

			claims, err := tokens.Parse(tokenString)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
			}

			c.Set("userID", claims.UserID)
			c.Set("userEmail", claims.Email)
			c.Set("userRole", claims.Role)

			return next(c)
		}
	}
}

// RequireAdmin rejects callers whose token does not carry the admin role.
// Must run after RequireAuth.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get("userRole").(models.Role)
			if role != models.RoleAdmin {
				return echo.NewHTTPError(http.StatusForbidden, "Admin access required")
			}
			return next(c)
		}
	}
}
