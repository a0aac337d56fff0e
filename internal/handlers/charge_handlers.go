package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"societypay_echo/internal/models"
	"societypay_echo/internal/services"
)

// ChargeHandler owns the monthly charge schedule endpoints
type ChargeHandler struct {
	db *gorm.DB
}

// NewChargeHandler creates a new ChargeHandler
func NewChargeHandler(db *gorm.DB) *ChargeHandler {
	return &ChargeHandler{db: db}
}

// List returns all charge schedules, newest period first
func (h *ChargeHandler) List(c echo.Context) error {
	charges := []models.MonthlyCharge{}
	err := h.db.Order("year desc").Order("month desc").Find(&charges).Error
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, charges)
}

// Create sets the charge schedule for a (month, year). One entry per
// period; the breakdown is informational and need not sum to the base
// charge.
func (h *ChargeHandler) Create(c echo.Context) error {
	var req ChargeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON payload")
	}
	if req.Month < 1 || req.Month > 12 {
		return echo.NewHTTPError(http.StatusBadRequest, "month must be between 1 and 12")
	}
	if req.Year < 2000 {
		return echo.NewHTTPError(http.StatusBadRequest, "year is out of range")
	}

	charge := models.MonthlyCharge{
		Month:      req.Month,
		Year:       req.Year,
		BaseCharge: req.BaseCharge,
		Breakdown:  req.Breakdown,
	}
	if err := h.db.Create(&charge).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return services.ErrChargeExists
		}
		return err
	}
	return c.JSON(http.StatusOK, charge)
}
