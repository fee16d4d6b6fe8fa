package repository

import (
	"time"

	"github.com/ManuelReschke/EventDesk/app/models"
	"gorm.io/gorm"
)

// PaymentTransition describes the columns written when a PENDING payment is
// moved to its next state. Empty TransactionID leaves the column untouched.
type PaymentTransition struct {
	Status             string
	TransactionID      string
	NotificationStatus string
	NextCheckAt        *time.Time
}

// PaymentRepository defines the interface for payment_history operations
type PaymentRepository interface {
	Create(payment *models.PaymentHistory) error
	GetByOrderID(orderID string) (*models.PaymentHistory, error)
	GetByOrderIDWithPayer(orderID string) (*models.PaymentHistory, error)
	GetByTransactionID(transactionID string) (*models.PaymentHistory, error)
	PayerExists(userID, eventID uint) (bool, error)
	TransitionFromPending(orderID string, t PaymentTransition) (bool, error)
	ClaimPendingNotification(orderID string) (bool, error)
	RearmPendingCheck(orderID string, at time.Time) (bool, error)
	ListDuePendingChecks(now time.Time, limit int) ([]models.PaymentHistory, error)
	List(status string, offset, limit int) ([]models.PaymentHistory, error)
	Count(status string) (int64, error)
}

// PaymentCallbackRepository defines the interface for the callback audit log
type PaymentCallbackRepository interface {
	Create(callback *models.PaymentCallback) error
	ListByOrderID(orderID string) ([]models.PaymentCallback, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	Payment         PaymentRepository
	PaymentCallback PaymentCallbackRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Payment:         NewPaymentRepository(db),
		PaymentCallback: NewPaymentCallbackRepository(db),
	}
}
