package services

import (
	"errors"
	"testing"

	"gorm.io/gorm"

	"societypay_echo/internal/models"
)

func TestAmountDue(t *testing.T) {
	breakdown := map[string]float64{
		"water":       100,
		"security":    150,
		"maintenance": 200,
		"repairs":     50,
	}

	tests := []struct {
		name         string
		customCharge *float64
		seedSchedule bool
		expected     float64
	}{
		{
			name:         "base charge from schedule",
			customCharge: nil,
			seedSchedule: true,
			expected:     500,
		},
		{
			name:         "custom charge wins over schedule",
			customCharge: floatPtr(650),
			seedSchedule: true,
			expected:     650,
		},
		{
			name:         "custom charge ignores missing schedule",
			customCharge: floatPtr(650),
			seedSchedule: false,
			expected:     650,
		},
		{
			name:         "zero custom charge is still a value",
			customCharge: floatPtr(0),
			seedSchedule: true,
			expected:     0,
		},
		{
			name:         "nothing configured means nothing billed",
			customCharge: nil,
			seedSchedule: false,
			expected:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := newTestDB(t)
			if tt.seedSchedule {
				seedCharge(t, db, 6, 2025, 500, breakdown)
			}
			flat := seedFlat(t, db, "F101", tt.customCharge)

			dues := NewDuesService(db)
			got, err := dues.AmountDue(flat, 6, 2025)
			if err != nil {
				t.Fatalf("AmountDue: %v", err)
			}
			if got != tt.expected {
				t.Errorf("AmountDue = %v; want %v", got, tt.expected)
			}
		})
	}
}

func TestScheduleForMissingPeriodIsNil(t *testing.T) {
	db := newTestDB(t)
	dues := NewDuesService(db)

	charge, err := dues.ScheduleFor(1, 2030)
	if err != nil {
		t.Fatalf("ScheduleFor: %v", err)
	}
	if charge != nil {
		t.Errorf("expected nil schedule, got %+v", charge)
	}
}

func TestScheduleForRoundTripsBreakdown(t *testing.T) {
	db := newTestDB(t)
	seedCharge(t, db, 6, 2025, 500, map[string]float64{"water": 100, "repairs": 50})
	dues := NewDuesService(db)

	charge, err := dues.ScheduleFor(6, 2025)
	if err != nil {
		t.Fatalf("ScheduleFor: %v", err)
	}
	if charge == nil {
		t.Fatal("expected a schedule")
	}
	if charge.Breakdown["water"] != 100 || charge.Breakdown["repairs"] != 50 {
		t.Errorf("breakdown mangled: %+v", charge.Breakdown)
	}
}

func TestDuplicateSchedulePeriodRejected(t *testing.T) {
	db := newTestDB(t)
	seedCharge(t, db, 6, 2025, 500, nil)

	err := db.Create(&models.MonthlyCharge{Month: 6, Year: 2025, BaseCharge: 600}).Error
	if err == nil {
		t.Fatal("expected duplicate period to be rejected")
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Errorf("expected gorm.ErrDuplicatedKey, got %v", err)
	}
}
