package payment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/EventDesk/app/models"
	"github.com/ManuelReschke/EventDesk/internal/pkg/gateway"
	"github.com/ManuelReschke/EventDesk/internal/pkg/metrics"
)

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// CreateOrderInput is the order intake request. Amount is in major units.
type CreateOrderInput struct {
	Amount   float64 `json:"amount" validate:"required,gt=0"`
	Currency string  `json:"currency" validate:"required,len=3,alpha"`
	UserID   uint    `json:"user_id" validate:"required"`
	EventID  uint    `json:"event_id" validate:"required"`
}

func (in *CreateOrderInput) Validate() error {
	return validate.Struct(in)
}

type CreateOrderResult struct {
	OrderID     string `json:"order_id"`
	Currency    string `json:"currency"`
	AmountMinor int64  `json:"amount"`
	Receipt     string `json:"receipt"`
}

// ToMinorUnits converts a major-unit amount to minor units, rounding to the
// nearest unit.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// CreateOrder mints a gateway order and persists the PENDING payment record.
// Nothing is stored when the gateway call fails.
func (s *Service) CreateOrder(ctx context.Context, in CreateOrderInput) (*CreateOrderResult, error) {
	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, describeValidation(err))
	}
	if math.IsInf(in.Amount, 0) || math.IsNaN(in.Amount) {
		return nil, validationError("amount must be a finite number")
	}
	minor := ToMinorUnits(in.Amount)
	if minor <= 0 {
		return nil, validationError("amount must be at least 0.01")
	}
	if s.gateway == nil {
		return nil, upstreamError("create order", gateway.ErrNotConfigured)
	}
	exists, err := s.payments.PayerExists(in.UserID, in.EventID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user %d and event %d: %w", in.UserID, in.EventID, err)
	}
	if !exists {
		return nil, validationError("unknown user_id or event_id")
	}

	receipt := "rcpt_" + s.ids.Generate().String()
	order, err := s.gateway.CreateOrder(ctx, gateway.OrderRequest{
		Amount:   minor,
		Currency: in.Currency,
		Receipt:  receipt,
		Notes: map[string]string{
			"user_id":  strconv.FormatUint(uint64(in.UserID), 10),
			"event_id": strconv.FormatUint(uint64(in.EventID), 10),
		},
	})
	if err != nil {
		log.Errorf("[Payment] Gateway order creation failed (receipt=%s): %v", receipt, err)
		return nil, upstreamError("create order", err)
	}

	rec := &models.PaymentHistory{
		OrderID:     order.ID,
		UserID:      in.UserID,
		EventID:     in.EventID,
		AmountMinor: minor,
		Currency:    in.Currency,
		Receipt:     receipt,
		Status:      models.PaymentStatusPending,
	}
	if err := s.payments.Create(rec); err != nil {
		return nil, fmt.Errorf("failed to store order %s: %w", order.ID, err)
	}

	metrics.OrdersCreatedTotal.WithLabelValues(in.Currency).Inc()
	log.Infof("[Payment] Created order %s for user %d event %d (%s %s)", order.ID, in.UserID, in.EventID, in.Currency, models.FormatMinorAmount(minor))
	s.publish(ctx, rec)

	return &CreateOrderResult{
		OrderID:     order.ID,
		Currency:    in.Currency,
		AmountMinor: minor,
		Receipt:     receipt,
	}, nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, ", ")
}
