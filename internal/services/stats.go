package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"societypay_echo/internal/models"
)

// StatsService derives dashboard views from the ledger, the flat registry
// and the charge schedule. It never writes.
type StatsService struct {
	db   *gorm.DB
	dues *DuesService
}

// NewStatsService creates a StatsService
func NewStatsService(db *gorm.DB, dues *DuesService) *StatsService {
	return &StatsService{db: db, dues: dues}
}

// AdminStats is the association-wide dashboard.
type AdminStats struct {
	TotalFlats     int64            `json:"total_flats"`
	TotalCollected float64          `json:"total_collected"`
	PendingDues    float64          `json:"pending_dues"`
	PendingCount   int64            `json:"pending_count"`
	RecentPayments []models.Payment `json:"recent_payments"`
}

// ResidentDashboard is the per-flat view for a logged-in resident.
type ResidentDashboard struct {
	Flat           models.Flat        `json:"flat"`
	CurrentDue     float64            `json:"current_due"`
	PaymentStatus  string             `json:"payment_status"`
	PaymentHistory []models.Payment   `json:"payment_history"`
	Breakdown      map[string]float64 `json:"current_charge_breakdown"`
}

// Admin computes the admin dashboard for the month containing now.
// Pending dues use the schedule's base charge only; per-flat custom charge
// overrides are deliberately ignored in the aggregate.
func (s *StatsService) Admin(now time.Time) (*AdminStats, error) {
	stats := &AdminStats{RecentPayments: []models.Payment{}}

	if err := s.db.Model(&models.Flat{}).Count(&stats.TotalFlats).Error; err != nil {
		return nil, err
	}

	err := s.db.Model(&models.Payment{}).
		Where("status = ?", models.PaymentStatusPaid).
		Select("coalesce(sum(amount), 0)").
		Scan(&stats.TotalCollected).Error
	if err != nil {
		return nil, err
	}

	month, year := int(now.Month()), now.Year()

	var paidFlats int64
	err = s.db.Model(&models.Payment{}).
		Where("month = ? AND year = ? AND status = ?", month, year, models.PaymentStatusPaid).
		Distinct("flat_id").
		Count(&paidFlats).Error
	if err != nil {
		return nil, err
	}
	stats.PendingCount = stats.TotalFlats - paidFlats

	charge, err := s.dues.ScheduleFor(month, year)
	if err != nil {
		return nil, err
	}
	if charge != nil {
		stats.PendingDues = float64(stats.PendingCount) * charge.BaseCharge
	}

	err = s.db.Order("created_at desc").Limit(5).Find(&stats.RecentPayments).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// Resident computes a resident's dashboard for the month containing now.
func (s *StatsService) Resident(userID uint, now time.Time) (*ResidentDashboard, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if user.FlatNumber == nil {
		return nil, ErrNoFlatForUser
	}

	var flat models.Flat
	if err := s.db.Where("flat_number = ?", *user.FlatNumber).First(&flat).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoFlatForUser
		}
		return nil, err
	}

	month, year := int(now.Month()), now.Year()

	due, err := s.dues.AmountDue(&flat, month, year)
	if err != nil {
		return nil, err
	}

	var paidCount int64
	err = s.db.Model(&models.Payment{}).
		Where("flat_id = ? AND month = ? AND year = ? AND status = ?",
			flat.ID, month, year, models.PaymentStatusPaid).
		Count(&paidCount).Error
	if err != nil {
		return nil, err
	}
	status := "pending"
	if paidCount > 0 {
		status = models.PaymentStatusPaid
	}

	history := []models.Payment{}
	err = s.db.Where("flat_id = ?", flat.ID).
		Order("created_at desc").Limit(10).
		Find(&history).Error
	if err != nil {
		return nil, err
	}

	breakdown := map[string]float64{}
	charge, err := s.dues.ScheduleFor(month, year)
	if err != nil {
		return nil, err
	}
	if charge != nil && charge.Breakdown != nil {
		breakdown = charge.Breakdown
	}

	return &ResidentDashboard{
		Flat:           flat,
		CurrentDue:     due,
		PaymentStatus:  status,
		PaymentHistory: history,
		Breakdown:      breakdown,
	}, nil
}
