package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	CallbackOutcomeApplied  = "applied"
	CallbackOutcomeNoop     = "noop"
	CallbackOutcomeRejected = "rejected"
	CallbackOutcomeError    = "error"
)

// PaymentCallback stores every verification callback for auditing, including
// rejected ones.
type PaymentCallback struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	OrderID         string         `gorm:"type:varchar(64);not null;index" json:"order_id"`
	PaymentID       string         `gorm:"type:varchar(64)" json:"payment_id"`
	AssertedStatus  string         `gorm:"type:varchar(32);not null" json:"asserted_status"`
	SignatureValid  bool           `gorm:"default:false" json:"signature_valid"`
	Outcome         string         `gorm:"type:varchar(16);not null;index" json:"outcome"`
	ProcessingError string         `gorm:"type:text" json:"processing_error"`
	PayloadJSON     datatypes.JSON `json:"payload_json"`
	CreatedAt       time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
}
