package services

import (
	"errors"
	"testing"
	"time"

	"societypay_echo/internal/models"
)

var statsNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func TestAdminStats(t *testing.T) {
	db := newTestDB(t)
	seedCharge(t, db, 6, 2025, 500, testBreakdown)
	f1 := seedFlat(t, db, "F101", nil)
	f2 := seedFlat(t, db, "F102", floatPtr(650))
	seedFlat(t, db, "F103", nil)

	svc := newTestPaymentService(db, pendingCheckout(), &stubOrders{})
	if _, err := svc.RecordPayment(f1.ID, 6, 2025, 500, models.PaymentMethodCash); err != nil {
		t.Fatalf("seed payment: %v", err)
	}
	if _, err := svc.RecordPayment(f2.ID, 6, 2025, 650, models.PaymentMethodCash); err != nil {
		t.Fatalf("seed payment: %v", err)
	}
	// last month's payment counts toward collection but not this month's
	// pending figures
	if _, err := svc.RecordPayment(f1.ID, 5, 2025, 480, models.PaymentMethodCash); err != nil {
		t.Fatalf("seed payment: %v", err)
	}

	stats, err := NewStatsService(db, NewDuesService(db)).Admin(statsNow)
	if err != nil {
		t.Fatalf("Admin: %v", err)
	}
	if stats.TotalFlats != 3 {
		t.Errorf("TotalFlats = %d; want 3", stats.TotalFlats)
	}
	if stats.TotalCollected != 1630 {
		t.Errorf("TotalCollected = %v; want 1630", stats.TotalCollected)
	}
	if stats.PendingCount != 1 {
		t.Errorf("PendingCount = %d; want 1", stats.PendingCount)
	}
	// pending dues are estimated from the base charge even for flats with
	// a custom override
	if stats.PendingDues != 500 {
		t.Errorf("PendingDues = %v; want 500", stats.PendingDues)
	}
	if len(stats.RecentPayments) != 3 {
		t.Errorf("RecentPayments = %d entries; want 3", len(stats.RecentPayments))
	}
}

func TestAdminStatsEmptyDatabase(t *testing.T) {
	db := newTestDB(t)
	stats, err := NewStatsService(db, NewDuesService(db)).Admin(statsNow)
	if err != nil {
		t.Fatalf("Admin: %v", err)
	}
	if stats.TotalFlats != 0 || stats.TotalCollected != 0 || stats.PendingCount != 0 || stats.PendingDues != 0 {
		t.Errorf("empty stats = %+v", stats)
	}
	if stats.RecentPayments == nil {
		t.Error("RecentPayments should be an empty slice, not nil")
	}
}

func TestResidentDashboardPaid(t *testing.T) {
	db := newTestDB(t)
	seedCharge(t, db, 6, 2025, 500, testBreakdown)
	flat := seedFlat(t, db, "F101", nil)
	resident := models.User{Name: "Res", Email: "res@example.com", Role: models.RoleResident, FlatNumber: &flat.FlatNumber}
	if err := db.Create(&resident).Error; err != nil {
		t.Fatalf("seed resident: %v", err)
	}

	svc := newTestPaymentService(db, pendingCheckout(), &stubOrders{})
	if _, err := svc.RecordPayment(flat.ID, 6, 2025, 500, models.PaymentMethodCash); err != nil {
		t.Fatalf("seed payment: %v", err)
	}

	dash, err := NewStatsService(db, NewDuesService(db)).Resident(resident.ID, statsNow)
	if err != nil {
		t.Fatalf("Resident: %v", err)
	}
	if dash.Flat.ID != flat.ID {
		t.Errorf("dashboard flat = %d; want %d", dash.Flat.ID, flat.ID)
	}
	if dash.CurrentDue != 500 {
		t.Errorf("CurrentDue = %v; want 500", dash.CurrentDue)
	}
	if dash.PaymentStatus != "paid" {
		t.Errorf("PaymentStatus = %s; want paid", dash.PaymentStatus)
	}
	if len(dash.PaymentHistory) != 1 {
		t.Errorf("PaymentHistory = %d entries; want 1", len(dash.PaymentHistory))
	}
	if dash.Breakdown["water"] != 100 || dash.Breakdown["maintenance"] != 200 {
		t.Errorf("Breakdown = %+v", dash.Breakdown)
	}
}

func TestResidentDashboardPendingWithoutSchedule(t *testing.T) {
	db := newTestDB(t)
	flat := seedFlat(t, db, "F101", floatPtr(650))
	resident := models.User{Name: "Res", Email: "res@example.com", Role: models.RoleResident, FlatNumber: &flat.FlatNumber}
	if err := db.Create(&resident).Error; err != nil {
		t.Fatalf("seed resident: %v", err)
	}

	dash, err := NewStatsService(db, NewDuesService(db)).Resident(resident.ID, statsNow)
	if err != nil {
		t.Fatalf("Resident: %v", err)
	}
	if dash.CurrentDue != 650 {
		t.Errorf("CurrentDue = %v; want custom charge 650", dash.CurrentDue)
	}
	if dash.PaymentStatus != "pending" {
		t.Errorf("PaymentStatus = %s; want pending", dash.PaymentStatus)
	}
	if dash.Breakdown == nil || len(dash.Breakdown) != 0 {
		t.Errorf("Breakdown = %+v; want empty map", dash.Breakdown)
	}
}

func TestResidentDashboardNoFlat(t *testing.T) {
	db := newTestDB(t)
	resident := models.User{Name: "NoFlat", Email: "noflat@example.com", Role: models.RoleResident}
	if err := db.Create(&resident).Error; err != nil {
		t.Fatalf("seed resident: %v", err)
	}

	_, err := NewStatsService(db, NewDuesService(db)).Resident(resident.ID, statsNow)
	if !errors.Is(err, ErrNoFlatForUser) {
		t.Fatalf("expected ErrNoFlatForUser, got %v", err)
	}

	// same outcome when the recorded flat number no longer exists
	ghost := "F999"
	orphan := models.User{Name: "Orphan", Email: "orphan@example.com", Role: models.RoleResident, FlatNumber: &ghost}
	if err := db.Create(&orphan).Error; err != nil {
		t.Fatalf("seed resident: %v", err)
	}
	_, err = NewStatsService(db, NewDuesService(db)).Resident(orphan.ID, statsNow)
	if !errors.Is(err, ErrNoFlatForUser) {
		t.Fatalf("expected ErrNoFlatForUser, got %v", err)
	}
}
