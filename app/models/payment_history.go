package models

import (
	"fmt"
	"strings"
	"time"
)

const (
	PaymentStatusPending  = "PENDING"
	PaymentStatusSuccess  = "SUCCESS"
	PaymentStatusFailed   = "FAILED"
	PaymentStatusRefunded = "REFUNDED"
)

const (
	NotificationSuccessSent  = "SUCCESS_SENT"
	NotificationFailedSent   = "FAILED_SENT"
	NotificationRefundedSent = "REFUNDED_SENT"
	NotificationPendingWait  = "PENDING_WAIT"
	NotificationPendingSent  = "PENDING_SENT"
)

// PaymentHistory is the persisted record of one gateway order. Exactly one row
// exists per order_id; only PENDING rows may change status.
type PaymentHistory struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	OrderID            string     `gorm:"type:varchar(64);not null;uniqueIndex" json:"order_id"`
	TransactionID      *string    `gorm:"type:varchar(64);default:null;index" json:"transaction_id"`
	UserID             uint       `gorm:"not null;index" json:"user_id"`
	EventID            uint       `gorm:"not null;index" json:"event_id"`
	AmountMinor        int64      `gorm:"not null" json:"amount_minor"`
	Currency           string     `gorm:"type:varchar(3);not null" json:"currency"`
	Receipt            string     `gorm:"type:varchar(64)" json:"receipt"`
	Status             string     `gorm:"type:varchar(16);not null;default:'PENDING';index" json:"status"`
	NotificationStatus *string    `gorm:"type:varchar(32);default:null" json:"notification_status"`
	NextCheckAt        *time.Time `gorm:"default:null;index" json:"next_check_at,omitempty"`
	CreatedAt          time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	User  User  `gorm:"foreignKey:UserID" json:"-"`
	Event Event `gorm:"foreignKey:EventID" json:"-"`
}

func (PaymentHistory) TableName() string { return "payment_history" }

// IsTerminalPaymentStatus reports whether status can no longer change.
func IsTerminalPaymentStatus(status string) bool {
	switch status {
	case PaymentStatusSuccess, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	default:
		return false
	}
}

// NormalizePaymentStatus upper-cases and trims a caller supplied status token.
func NormalizePaymentStatus(status string) string {
	return strings.ToUpper(strings.TrimSpace(status))
}

func (p *PaymentHistory) IsTerminal() bool {
	return IsTerminalPaymentStatus(p.Status)
}

func (p *PaymentHistory) TransactionIDValue() string {
	if p.TransactionID == nil {
		return ""
	}
	return *p.TransactionID
}

func (p *PaymentHistory) NotificationStatusValue() string {
	if p.NotificationStatus == nil {
		return ""
	}
	return *p.NotificationStatus
}

// FormatMinorAmount renders minor units in major units with two decimals.
func FormatMinorAmount(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}
