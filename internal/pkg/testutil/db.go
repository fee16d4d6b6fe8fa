// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ManuelReschke/EventDesk/app/models"
	"github.com/ManuelReschke/EventDesk/internal/pkg/database"
)

// NewTestDB opens an isolated in-memory SQLite database with the payment
// schema migrated. Each test gets its own database.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// SeedPayer creates a user and an event and returns their ids.
func SeedPayer(t *testing.T, db *gorm.DB) (uint, uint) {
	t.Helper()

	user := &models.User{Name: "Asha Rao", Email: fmt.Sprintf("asha+%d@example.org", time.Now().UnixNano()), Phone: "+91 98450 00000"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	event := &models.Event{Title: "Annual Tech Summit", Venue: "Bengaluru"}
	if err := db.Create(event).Error; err != nil {
		t.Fatalf("failed to seed event: %v", err)
	}
	return user.ID, event.ID
}

// SeedPayment inserts a payment record in the given status.
func SeedPayment(t *testing.T, db *gorm.DB, orderID, status string) *models.PaymentHistory {
	t.Helper()

	userID, eventID := SeedPayer(t, db)
	p := &models.PaymentHistory{
		OrderID:     orderID,
		UserID:      userID,
		EventID:     eventID,
		AmountMinor: 50000,
		Currency:    "INR",
		Status:      status,
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("failed to seed payment: %v", err)
	}
	return p
}
