package models

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm/schema"
)

func TestIsTerminalPaymentStatus(t *testing.T) {
	for _, s := range []string{PaymentStatusSuccess, PaymentStatusFailed, PaymentStatusRefunded} {
		assert.True(t, IsTerminalPaymentStatus(s), s)
	}
	assert.False(t, IsTerminalPaymentStatus(PaymentStatusPending))
	assert.False(t, IsTerminalPaymentStatus("success"))
}

func TestNormalizePaymentStatus(t *testing.T) {
	assert.Equal(t, "SUCCESS", NormalizePaymentStatus(" success "))
	assert.Equal(t, "", NormalizePaymentStatus(""))
}

func TestFormatMinorAmount(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{50000, "500.00"},
		{49999, "499.99"},
		{5, "0.05"},
		{0, "0.00"},
		{-150, "-1.50"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatMinorAmount(tt.in))
	}
}

func TestPaymentHistoryNullableAccessors(t *testing.T) {
	p := &PaymentHistory{Status: PaymentStatusPending}
	assert.Equal(t, "", p.TransactionIDValue())
	assert.Equal(t, "", p.NotificationStatusValue())
	assert.False(t, p.IsTerminal())

	txn := "pay_1"
	ns := NotificationSuccessSent
	p.TransactionID = &txn
	p.NotificationStatus = &ns
	p.Status = PaymentStatusSuccess
	assert.Equal(t, "pay_1", p.TransactionIDValue())
	assert.Equal(t, NotificationSuccessSent, p.NotificationStatusValue())
	assert.True(t, p.IsTerminal())
}

// AutoMigrate must produce the column types of migrations/postgres.
func TestTimestampColumnsAreZoned(t *testing.T) {
	dialector := postgres.Dialector{Config: &postgres.Config{}}
	cases := []struct {
		model  interface{}
		column string
	}{
		{&PaymentHistory{}, "next_check_at"},
		{&PaymentHistory{}, "created_at"},
		{&Event{}, "starts_at"},
	}
	for _, c := range cases {
		s, err := schema.Parse(c.model, &sync.Map{}, schema.NamingStrategy{})
		require.NoError(t, err)
		field := s.LookUpField(c.column)
		require.NotNil(t, field, c.column)
		assert.Equal(t, "timestamptz", dialector.DataTypeOf(field), c.column)
	}
}
