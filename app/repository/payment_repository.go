package repository

import (
	"time"

	"github.com/ManuelReschke/EventDesk/app/models"
	"gorm.io/gorm"
)

// paymentRepository implements the PaymentRepository interface
type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository instance
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

// Create inserts a new payment record
func (r *paymentRepository) Create(payment *models.PaymentHistory) error {
	return r.db.Create(payment).Error
}

// GetByOrderID retrieves a payment by its gateway order id
func (r *paymentRepository) GetByOrderID(orderID string) (*models.PaymentHistory, error) {
	var payment models.PaymentHistory
	err := r.db.Where("order_id = ?", orderID).First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// GetByOrderIDWithPayer retrieves a payment with user and event for notifications
func (r *paymentRepository) GetByOrderIDWithPayer(orderID string) (*models.PaymentHistory, error) {
	var payment models.PaymentHistory
	err := r.db.Preload("User").Preload("Event").
		Where("order_id = ?", orderID).
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// GetByTransactionID retrieves a payment with payer and event for receipts
func (r *paymentRepository) GetByTransactionID(transactionID string) (*models.PaymentHistory, error) {
	var payment models.PaymentHistory
	err := r.db.Preload("User").Preload("Event").
		Where("transaction_id = ?", transactionID).
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// PayerExists reports whether both the user and the event of a new order exist
func (r *paymentRepository) PayerExists(userID, eventID uint) (bool, error) {
	var users, events int64
	if err := r.db.Model(&models.User{}).Where("id = ?", userID).Count(&users).Error; err != nil {
		return false, err
	}
	if users == 0 {
		return false, nil
	}
	if err := r.db.Model(&models.Event{}).Where("id = ?", eventID).Count(&events).Error; err != nil {
		return false, err
	}
	return events > 0, nil
}

// TransitionFromPending applies t in a single conditional UPDATE that only
// matches rows still in PENDING. Moving to PENDING_WAIT additionally requires
// that the pending mail has not gone out. It returns false when no row matched.
func (r *paymentRepository) TransitionFromPending(orderID string, t PaymentTransition) (bool, error) {
	updates := map[string]interface{}{
		"status":              t.Status,
		"notification_status": t.NotificationStatus,
		"updated_at":          time.Now(),
	}
	if t.TransactionID != "" {
		updates["transaction_id"] = t.TransactionID
	}
	if t.NextCheckAt != nil {
		updates["next_check_at"] = *t.NextCheckAt
	}

	q := r.db.Model(&models.PaymentHistory{}).
		Where("order_id = ? AND status = ?", orderID, models.PaymentStatusPending)
	if t.NotificationStatus == models.NotificationPendingWait {
		q = q.Where("(notification_status IS NULL OR notification_status <> ?)", models.NotificationPendingSent)
	}
	tx := q.Updates(updates)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// ClaimPendingNotification marks the pending notification as sent if the
// payment is still PENDING and no pending notification went out yet.
func (r *paymentRepository) ClaimPendingNotification(orderID string) (bool, error) {
	tx := r.db.Model(&models.PaymentHistory{}).
		Where("order_id = ? AND status = ?", orderID, models.PaymentStatusPending).
		Where("(notification_status IS NULL OR notification_status <> ?)", models.NotificationPendingSent).
		Updates(map[string]interface{}{
			"notification_status": models.NotificationPendingSent,
			"next_check_at":       nil,
			"updated_at":          time.Now(),
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// RearmPendingCheck undoes a claim whose dispatch failed so the sweeper picks
// the payment up again at the given time.
func (r *paymentRepository) RearmPendingCheck(orderID string, at time.Time) (bool, error) {
	tx := r.db.Model(&models.PaymentHistory{}).
		Where("order_id = ? AND status = ? AND notification_status = ?",
			orderID, models.PaymentStatusPending, models.NotificationPendingSent).
		Updates(map[string]interface{}{
			"notification_status": models.NotificationPendingWait,
			"next_check_at":       at,
			"updated_at":          time.Now(),
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// ListDuePendingChecks returns PENDING payments whose deferred check is overdue
func (r *paymentRepository) ListDuePendingChecks(now time.Time, limit int) ([]models.PaymentHistory, error) {
	var payments []models.PaymentHistory
	err := r.db.
		Where("status = ? AND next_check_at IS NOT NULL AND next_check_at <= ?", models.PaymentStatusPending, now).
		Order("next_check_at ASC").
		Limit(limit).
		Find(&payments).Error
	return payments, err
}

// List retrieves payments newest first, optionally filtered by status
func (r *paymentRepository) List(status string, offset, limit int) ([]models.PaymentHistory, error) {
	var payments []models.PaymentHistory
	q := r.db.Order("created_at DESC").Order("id DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Offset(offset).Limit(limit).Find(&payments).Error
	return payments, err
}

// Count returns the number of payments, optionally filtered by status
func (r *paymentRepository) Count(status string) (int64, error) {
	var count int64
	q := r.db.Model(&models.PaymentHistory{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Count(&count).Error
	return count, err
}
