package services

import (
	"errors"

	"gorm.io/gorm"

	"societypay_echo/internal/models"
)

// DuesService computes what a flat owes for a billing period. Read-only.
type DuesService struct {
	db *gorm.DB
}

// NewDuesService creates a DuesService
func NewDuesService(db *gorm.DB) *DuesService {
	return &DuesService{db: db}
}

// ScheduleFor returns the charge schedule for (month, year), or nil when
// none is configured. Callers that must fail loud on a missing schedule
// check for nil themselves.
func (s *DuesService) ScheduleFor(month, year int) (*models.MonthlyCharge, error) {
	var charge models.MonthlyCharge
	err := s.db.Where("month = ? AND year = ?", month, year).First(&charge).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &charge, nil
}

// AmountDue resolves the amount a flat owes for (month, year): a set
// custom charge wins outright (zero included), otherwise the schedule's
// base charge, otherwise zero. Nothing billed yet is not an error.
func (s *DuesService) AmountDue(flat *models.Flat, month, year int) (float64, error) {
	if flat.CustomCharge != nil {
		return *flat.CustomCharge, nil
	}
	charge, err := s.ScheduleFor(month, year)
	if err != nil {
		return 0, err
	}
	if charge == nil {
		return 0, nil
	}
	return charge.BaseCharge, nil
}
