package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"societypay_echo/internal/models"
	"societypay_echo/internal/services"
)

// AuthHandler handles registration, login and account introspection
type AuthHandler struct {
	db     *gorm.DB
	tokens *services.TokenService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(db *gorm.DB, tokens *services.TokenService) *AuthHandler {
	return &AuthHandler{db: db, tokens: tokens}
}

// Register creates a resident or admin account. The first admin ever
// registered becomes the approved super admin; every later admin starts
// unapproved and gets no token until the super admin approves them.
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON payload")
	}
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email, password and name are required")
	}
	role := models.Role(req.Role)
	if role != models.RoleAdmin && role != models.RoleResident {
		return echo.NewHTTPError(http.StatusBadRequest, "role must be admin or resident")
	}

	var existing int64
	if err := h.db.Model(&models.User{}).Where("email = ?", req.Email).Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		return services.ErrEmailTaken
	}

	hash, err := services.HashPassword(req.Password)
	if err != nil {
		return err
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Phone:        req.Phone,
		Role:         role,
		FlatNumber:   req.FlatNumber,
		Approved:     true,
	}

	if role == models.RoleAdmin {
		var adminCount int64
		if err := h.db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&adminCount).Error; err != nil {
			return err
		}
		if adminCount == 0 {
			user.IsSuperAdmin = true
		} else {
			user.Approved = false
		}
	}

	if err := h.db.Create(&user).Error; err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		if !user.IsSuperAdmin {
			return services.ErrEmailTaken
		}
		// lost the first-admin race: the partial unique index on the super
		// admin flag rejected a second one. Tell which index fired, then
		// register as a pending admin instead. Unscoped because the index
		// holds soft-deleted rows too.
		var superAdmins int64
		if err := h.db.Unscoped().Model(&models.User{}).Where("is_super_admin = ?", true).Count(&superAdmins).Error; err != nil {
			return err
		}
		if superAdmins == 0 {
			return services.ErrEmailTaken
		}
		user.ID = 0
		user.IsSuperAdmin = false
		user.Approved = false
		if err := h.db.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return services.ErrEmailTaken
			}
			return err
		}
	}

	if user.Role == models.RoleAdmin && !user.Approved {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"message":          "Registration successful. Your admin account is pending approval from the super admin.",
			"pending_approval": true,
		})
	}

	token, err := h.tokens.Issue(&user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// Login exchanges credentials for a bearer token. Unapproved admins cannot
// log in.
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON payload")
	}

	var user models.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return services.ErrInvalidCredentials
		}
		return err
	}
	if !services.CheckPassword(user.PasswordHash, req.Password) {
		return services.ErrInvalidCredentials
	}
	if user.Role == models.RoleAdmin && !user.Approved {
		return services.ErrPendingApproval
	}

	token, err := h.tokens.Issue(&user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// Me returns the caller's account record
func (h *AuthHandler) Me(c echo.Context) error {
	userID := getUintFromContext(c, "userID")

	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return services.ErrUserNotFound
		}
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// ListPendingAdmins returns admin accounts awaiting approval. Super admin
// only; the flag is checked against the store, not the token.
func (h *AuthHandler) ListPendingAdmins(c echo.Context) error {
	if err := h.requireSuperAdmin(c); err != nil {
		return err
	}

	admins := []models.User{}
	err := h.db.Where("role = ? AND approved = ?", models.RoleAdmin, false).
		Order("created_at asc").
		Find(&admins).Error
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, admins)
}

// ApproveAdmin flips an admin account to approved. Super admin only.
func (h *AuthHandler) ApproveAdmin(c echo.Context) error {
	if err := h.requireSuperAdmin(c); err != nil {
		return err
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	res := h.db.Model(&models.User{}).
		Where("id = ? AND role = ?", id, models.RoleAdmin).
		Update("approved", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return services.ErrUserNotFound
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Admin approved"})
}

func (h *AuthHandler) requireSuperAdmin(c echo.Context) error {
	var actor models.User
	if err := h.db.First(&actor, getUintFromContext(c, "userID")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return services.ErrUserNotFound
		}
		return err
	}
	if !actor.IsSuperAdmin {
		return echo.NewHTTPError(http.StatusForbidden, "Super admin access required")
	}
	return nil
}
