package payment

import (
	"errors"
	"fmt"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("payment not found")
	ErrSignatureMismatch = errors.New("signature mismatch")
	ErrInvalidStatus     = errors.New("invalid payment status")
	ErrUpstream          = errors.New("upstream service failed")
)

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func upstreamError(what string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrUpstream, what, err)
}

// Code returns the machine readable error code used in API responses.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrSignatureMismatch):
		return "signature_mismatch"
	case errors.Is(err, ErrInvalidStatus):
		return "invalid_status"
	case errors.Is(err, ErrUpstream):
		return "upstream_error"
	default:
		return "internal_error"
	}
}
