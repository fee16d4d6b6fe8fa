package repository

import (
	"github.com/ManuelReschke/EventDesk/app/models"
	"gorm.io/gorm"
)

type paymentCallbackRepository struct {
	db *gorm.DB
}

// NewPaymentCallbackRepository creates a new callback audit repository instance
func NewPaymentCallbackRepository(db *gorm.DB) PaymentCallbackRepository {
	return &paymentCallbackRepository{db: db}
}

func (r *paymentCallbackRepository) Create(callback *models.PaymentCallback) error {
	return r.db.Create(callback).Error
}

func (r *paymentCallbackRepository) ListByOrderID(orderID string) ([]models.PaymentCallback, error) {
	var callbacks []models.PaymentCallback
	err := r.db.Where("order_id = ?", orderID).Order("id ASC").Find(&callbacks).Error
	return callbacks, err
}
