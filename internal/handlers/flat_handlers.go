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

// FlatHandler owns the flat registry endpoints
type FlatHandler struct {
	db *gorm.DB
}

// NewFlatHandler creates a new FlatHandler
func NewFlatHandler(db *gorm.DB) *FlatHandler {
	return &FlatHandler{db: db}
}

// List returns flats. Residents only ever see the flat matching their own
// flat number; admins see everything.
func (h *FlatHandler) List(c echo.Context) error {
	flats := []models.Flat{}

	if getRoleFromContext(c) == models.RoleResident {
		var user models.User
		if err := h.db.First(&user, getUintFromContext(c, "userID")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return services.ErrUserNotFound
			}
			return err
		}
		if user.FlatNumber == nil {
			return c.JSON(http.StatusOK, flats)
		}
		if err := h.db.Where("flat_number = ?", *user.FlatNumber).Find(&flats).Error; err != nil {
			return err
		}
		return c.JSON(http.StatusOK, flats)
	}

	if err := h.db.Order("flat_number asc").Find(&flats).Error; err != nil {
		return err
	}
	return c.JSON(http.StatusOK, flats)
}

// Create registers a new flat. Flat numbers are unique.
func (h *FlatHandler) Create(c echo.Context) error {
	var req FlatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON payload")
	}
	if req.FlatNumber == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "flat_number is required")
	}

	flat := models.Flat{
		FlatNumber:   req.FlatNumber,
		OwnerName:    req.OwnerName,
		OwnerEmail:   req.OwnerEmail,
		OwnerPhone:   req.OwnerPhone,
		FlatSize:     req.FlatSize,
		CustomCharge: req.CustomCharge,
	}
	if err := h.db.Create(&flat).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return services.ErrFlatNumberTaken
		}
		return err
	}
	return c.JSON(http.StatusOK, flat)
}

// Update replaces a flat's details
func (h *FlatHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid flat ID")
	}

	var req FlatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON payload")
	}

	var flat models.Flat
	if err := h.db.First(&flat, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return services.ErrFlatNotFound
		}
		return err
	}

	flat.FlatNumber = req.FlatNumber
	flat.OwnerName = req.OwnerName
	flat.OwnerEmail = req.OwnerEmail
	flat.OwnerPhone = req.OwnerPhone
	flat.FlatSize = req.FlatSize
	flat.CustomCharge = req.CustomCharge

	if err := h.db.Save(&flat).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return services.ErrFlatNumberTaken
		}
		return err
	}
	return c.JSON(http.StatusOK, flat)
}

// Delete removes a flat. Historical payments keep their flat_number
// snapshot, so nothing cascades.
func (h *FlatHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid flat ID")
	}

	res := h.db.Delete(&models.Flat{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return services.ErrFlatNotFound
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Flat deleted successfully"})
}
